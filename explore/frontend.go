package explore

import "github.com/vkngwrapper/explorer/offsetalloc"

// RegionStyle selects how a visualization rectangle is painted. The frontend
// maps styles to concrete colors; the core only distinguishes roles.
type RegionStyle int

const (
	StyleFreeFill RegionStyle = iota
	StyleFreeOutline
	StyleUsedFill
	StyleUsedOutline
	StyleHighlight
)

// Frontend is the immediate-mode widget surface the explorer renders against.
// The real implementation wraps whatever widget toolkit the host process
// uses; the explorer core never talks to a rendering backend directly.
//
// Pixel coordinates passed to DrawRect and returned from PointerPos are
// relative to the origin of the space most recently reserved with Advance,
// so the core stays ignorant of window placement.
type Frontend interface {
	Text(format string, args ...any)
	Button(label string) bool
	InputUint32(label string, value *uint32)
	SameLine()
	NewLine()

	PushID(id int)
	PopID()
	TreeNode(id uint64, format string, args ...any) bool
	TreePop()
	Indent()
	Unindent()

	// ContentWidth is the pixel width available for the visualization grid.
	ContentWidth() int
	DrawRect(r Rect, style RegionStyle)
	// Advance reserves a w x h pixel area at the current cursor and moves the
	// cursor past it. Subsequent DrawRect and PointerPos coordinates are
	// relative to that area's origin.
	Advance(w, h int)
	Tooltip(format string, args ...any)

	// PointerPos reports the pointer position relative to the last reserved
	// area, or ok == false when the pointer is outside it.
	PointerPos() (x, y int, ok bool)
	PointerClicked() bool

	KeyDown(key Key) bool
	// WantCaptureKeyboard is true while a text input has keyboard focus, in
	// which case keyboard accelerators must not fire.
	WantCaptureKeyboard() bool
}

// frontendTreeSink adapts a Frontend's tree widgets to the TreeSink consumed
// by Hierarchy.
type frontendTreeSink struct {
	frontend Frontend
}

func (s frontendTreeSink) BeginNode(handle offsetalloc.NodeHandle, format string, args ...any) bool {
	return s.frontend.TreeNode(uint64(handle), format, args...)
}

func (s frontendTreeSink) EndNode() {
	s.frontend.TreePop()
}

func (s frontendTreeSink) Attribute(format string, args ...any) {
	s.frontend.Text(format, args...)
}

package explore

// Key identifies a physical keyboard key by its uppercase character value.
type Key uint32

// Single-letter accelerators mirroring the control panel buttons.
const (
	KeyAllocate Key = 'A'
	KeyClear    Key = 'C'
	KeyDestroy  Key = 'D'
	KeyNew      Key = 'N'
)

// KeyEdge turns per-frame key-down polling into edge-triggered presses. It
// carries the previous frame's set of held keys and fires exactly once per
// physical press, no matter how many frames the key stays depressed. This is
// the only input state carried across frames.
type KeyEdge struct {
	downLastFrame map[Key]struct{}
}

func NewKeyEdge() *KeyEdge {
	return &KeyEdge{
		downLastFrame: map[Key]struct{}{},
	}
}

// Pressed reports whether key transitioned from released to held this frame.
// down is the current-frame polled state; captured indicates the surrounding
// UI wants raw keyboard focus (a text field is being edited), which both
// suppresses the press and clears the held state so no stale edge fires
// later.
func (e *KeyEdge) Pressed(key Key, down bool, captured bool) bool {
	if down && !captured {
		_, wasDownLastFrame := e.downLastFrame[key]
		e.downLastFrame[key] = struct{}{}
		return !wasDownLastFrame
	}

	delete(e.downLastFrame, key)
	return false
}

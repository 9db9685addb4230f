package explore

// Rect is an axis-aligned pixel rectangle, relative to the grid origin.
type Rect struct {
	X, Y, W, H int
}

// Inset shrinks the rectangle by n pixels on the left, right, top and bottom.
// It is used to draw an interior fill distinguishable from the outline.
func (r Rect) Inset(n int) Rect {
	return Rect{X: r.X + n, Y: r.Y + n, W: r.W - 2*n, H: r.H - 2*n}
}

// Contains returns true if the pixel (x, y) falls within the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// GridLayout maps linear byte intervals onto a wrapped row/column pixel grid.
// Each byte occupies one cell of CellW x CellH pixels; rows wrap every
// RowBytes bytes.
type GridLayout struct {
	RowBytes uint32
	CellW    int
	CellH    int
}

// FitRowBytes computes the widest whole-cell row that fits in availPx pixels.
// cellW must be a power of two.
func FitRowBytes(availPx int, cellW int) uint32 {
	if cellW <= 0 || availPx < cellW {
		return 0
	}
	DebugCheckPow2(uint(cellW), "cellW")
	return uint32(AlignDown(availPx, uint(cellW)) / cellW)
}

// Project splits the byte interval [offset, offset+size) at every row
// boundary and returns one rectangle per row segment, clipped to the row
// width. A zero-size interval projects to nothing.
func (g GridLayout) Project(offset, size uint32) []Rect {
	if size == 0 || g.RowBytes == 0 {
		return nil
	}

	var rects []Rect
	for size > 0 {
		row := offset / g.RowBytes
		col := offset % g.RowBytes

		run := g.RowBytes - col
		if run > size {
			run = size
		}

		rects = append(rects, Rect{
			X: int(col) * g.CellW,
			Y: int(row) * g.CellH,
			W: int(run) * g.CellW,
			H: g.CellH,
		})

		offset += run
		size -= run
	}

	return rects
}

// Unproject maps a pixel coordinate back to the byte offset whose cell covers
// it. It is the exact left inverse of Project: for any valid offset o,
// Unproject of the origin of Project(o, 1)[0] returns o. It returns false for
// coordinates left of, above, or right of the grid.
func (g GridLayout) Unproject(x, y int) (uint32, bool) {
	if g.RowBytes == 0 || g.CellW <= 0 || g.CellH <= 0 {
		return 0, false
	}
	if x < 0 || y < 0 {
		return 0, false
	}

	col := uint32(x / g.CellW)
	if col >= g.RowBytes {
		return 0, false
	}

	row := uint32(y / g.CellH)
	return row*g.RowBytes + col, true
}

// PixelWidth returns the pixel width of a full grid row.
func (g GridLayout) PixelWidth() int {
	return int(g.RowBytes) * g.CellW
}

// PixelHeight returns the pixel height of a grid covering capacity bytes.
func (g GridLayout) PixelHeight(capacity uint32) int {
	if g.RowBytes == 0 {
		return 0
	}
	rows := (capacity + g.RowBytes - 1) / g.RowBytes
	return int(rows) * g.CellH
}

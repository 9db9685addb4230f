package explore_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/explorer/explore"
)

func TestProjectSingleRow(t *testing.T) {
	layout := explore.GridLayout{RowBytes: 16, CellW: 8, CellH: 8}

	rects := layout.Project(2, 4)
	require.Equal(t, []explore.Rect{
		{X: 16, Y: 0, W: 32, H: 8},
	}, rects)
}

func TestProjectWrapsAtRowBoundary(t *testing.T) {
	layout := explore.GridLayout{RowBytes: 10, CellW: 4, CellH: 6}

	rects := layout.Project(8, 5)
	require.Equal(t, []explore.Rect{
		{X: 32, Y: 0, W: 8, H: 6},
		{X: 0, Y: 6, W: 12, H: 6},
	}, rects)
}

func TestProjectSpansMultipleFullRows(t *testing.T) {
	layout := explore.GridLayout{RowBytes: 8, CellW: 2, CellH: 2}

	rects := layout.Project(0, 24)
	require.Len(t, rects, 3)
	for i, r := range rects {
		require.Equal(t, 0, r.X)
		require.Equal(t, i*2, r.Y)
		require.Equal(t, 16, r.W)
	}
}

func TestProjectZeroSize(t *testing.T) {
	layout := explore.GridLayout{RowBytes: 16, CellW: 8, CellH: 8}
	require.Nil(t, layout.Project(5, 0))
}

func TestUnprojectIsLeftInverseOfProject(t *testing.T) {
	layouts := []explore.GridLayout{
		{RowBytes: 16, CellW: 16, CellH: 16},
		{RowBytes: 10, CellW: 4, CellH: 6},
		{RowBytes: 1, CellW: 2, CellH: 2},
		{RowBytes: 63, CellW: 8, CellH: 4},
	}

	for _, layout := range layouts {
		for offset := uint32(0); offset < 1024; offset++ {
			rects := layout.Project(offset, 1)
			require.Len(t, rects, 1)

			inverted, ok := layout.Unproject(rects[0].X, rects[0].Y)
			require.True(t, ok)
			require.Equal(t, offset, inverted, "row bytes %d, offset %d", layout.RowBytes, offset)
		}
	}
}

func TestUnprojectRejectsOutOfGrid(t *testing.T) {
	layout := explore.GridLayout{RowBytes: 8, CellW: 16, CellH: 16}

	_, ok := layout.Unproject(-1, 0)
	require.False(t, ok)

	_, ok = layout.Unproject(0, -5)
	require.False(t, ok)

	// Right of the last column
	_, ok = layout.Unproject(8*16, 0)
	require.False(t, ok)
}

func TestFitRowBytes(t *testing.T) {
	require.Equal(t, uint32(62), explore.FitRowBytes(1000, 16))
	require.Equal(t, uint32(64), explore.FitRowBytes(1024, 16))
	require.Equal(t, uint32(0), explore.FitRowBytes(7, 16))
	require.Equal(t, uint32(0), explore.FitRowBytes(100, 0))
}

func TestPixelDimensions(t *testing.T) {
	layout := explore.GridLayout{RowBytes: 64, CellW: 16, CellH: 16}
	require.Equal(t, 1024, layout.PixelWidth())
	require.Equal(t, 256, layout.PixelHeight(1024))
	require.Equal(t, 272, layout.PixelHeight(1025))
}

func TestRectInset(t *testing.T) {
	r := explore.Rect{X: 4, Y: 8, W: 20, H: 10}
	require.Equal(t, explore.Rect{X: 5, Y: 9, W: 18, H: 8}, r.Inset(1))
	require.True(t, r.Contains(4, 8))
	require.False(t, r.Contains(24, 8))
}

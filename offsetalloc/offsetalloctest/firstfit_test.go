package offsetalloctest_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/explorer/offsetalloc"
	"github.com/vkngwrapper/explorer/offsetalloc/offsetalloctest"
)

// requireBitsetInvariant verifies that bit leaf of each leaf word is set iff
// the bin's head slot is occupied, and that each top bit summarizes its leaf
// word.
func requireBitsetInvariant(t *testing.T, state *offsetalloc.RawState) {
	t.Helper()

	for index := uint32(0); index < offsetalloc.LeafBinCount; index++ {
		top, leaf := offsetalloc.SplitBinIndex(index)
		occupied := state.BinIndices[index] != offsetalloc.NoNode
		marked := state.UsedBins[top]&(1<<leaf) != 0

		require.Equal(t, occupied, marked, "bin (%d, %d)", top, leaf)
	}

	for top := uint32(0); top < offsetalloc.TopBinCount; top++ {
		topMarked := state.UsedBinsTop&(1<<top) != 0
		require.Equal(t, state.UsedBins[top] != 0, topMarked, "top bin %d", top)
	}
}

func TestFirstFitSequentialPlacement(t *testing.T) {
	allocator := offsetalloctest.New(1024, 128)

	a1 := allocator.Allocate(100)
	require.False(t, a1.IsNoSpace())
	require.Equal(t, uint32(0), a1.Offset)
	require.Equal(t, uint32(100), allocator.AllocationSize(a1))

	a2 := allocator.Allocate(200)
	require.False(t, a2.IsNoSpace())
	require.Equal(t, uint32(100), a2.Offset)

	report := allocator.StorageReport()
	require.Equal(t, uint32(724), report.TotalFreeSpace)
	require.Equal(t, uint32(724), report.LargestFreeRegion)

	requireBitsetInvariant(t, allocator.RawState())
}

func TestFirstFitFreeMergesNeighbors(t *testing.T) {
	allocator := offsetalloctest.New(1024, 128)

	a1 := allocator.Allocate(100)
	a2 := allocator.Allocate(200)
	a3 := allocator.Allocate(50)

	allocator.Free(a2)
	require.Equal(t, uint32(874), allocator.StorageReport().TotalFreeSpace)
	require.Equal(t, uint32(674), allocator.StorageReport().LargestFreeRegion)

	// Freeing a1 must merge with the hole left by a2
	allocator.Free(a1)
	require.Equal(t, uint32(974), allocator.StorageReport().TotalFreeSpace)
	require.Equal(t, uint32(674), allocator.StorageReport().LargestFreeRegion)

	// Freeing a3 collapses the whole buffer back into one region
	allocator.Free(a3)
	report := allocator.StorageReport()
	require.Equal(t, uint32(1024), report.TotalFreeSpace)
	require.Equal(t, uint32(1024), report.LargestFreeRegion)

	requireBitsetInvariant(t, allocator.RawState())
}

func TestFirstFitNoSpace(t *testing.T) {
	allocator := offsetalloctest.New(256, 16)

	a1 := allocator.Allocate(200)
	require.False(t, a1.IsNoSpace())

	a2 := allocator.Allocate(100)
	require.True(t, a2.IsNoSpace())

	// Failure must not disturb state
	require.Equal(t, uint32(56), allocator.StorageReport().TotalFreeSpace)
	requireBitsetInvariant(t, allocator.RawState())
}

func TestFirstFitReset(t *testing.T) {
	allocator := offsetalloctest.New(512, 32)

	allocator.Allocate(64)
	allocator.Allocate(128)
	allocator.Reset()

	report := allocator.StorageReport()
	require.Equal(t, uint32(512), report.TotalFreeSpace)
	require.Equal(t, uint32(512), report.LargestFreeRegion)
	requireBitsetInvariant(t, allocator.RawState())
}

func TestFirstFitStorageReportFull(t *testing.T) {
	allocator := offsetalloctest.New(1024, 128)
	allocator.Allocate(100)

	reports := allocator.StorageReportFull()
	require.Len(t, reports, offsetalloc.LeafBinCount)

	var populated []offsetalloc.BinReport
	for _, report := range reports {
		if report.Count > 0 {
			populated = append(populated, report)
		}
	}

	// One free region of 924 bytes remains
	require.Len(t, populated, 1)
	require.Equal(t, uint32(1), populated[0].Count)
	require.LessOrEqual(t, populated[0].BinApproxSize, uint32(924))
}

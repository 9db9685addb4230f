// Package offsetalloctest provides a reference test double for the
// offsetalloc.Allocator contract. Placement is deliberately first-fit at the
// lowest offset so test scenarios are exactly predictable, but the double
// maintains the full introspection surface- node pool, neighbor links, bin
// free lists and the two-level used-bins bitsets- so traversal code is
// exercised against real structures.
package offsetalloctest

import (
	"fmt"
	"math/bits"

	"github.com/vkngwrapper/explorer/offsetalloc"
)

type FirstFit struct {
	state offsetalloc.RawState

	// recycled pool slots, reused before the pool grows
	freeSlots []offsetalloc.NodeHandle
}

var _ offsetalloc.Allocator = &FirstFit{}

func New(size uint32, maxAllocs uint32) *FirstFit {
	f := &FirstFit{}
	f.state.Size = size
	f.state.MaxAllocs = maxAllocs
	f.initState()
	return f
}

func (f *FirstFit) initState() {
	f.state.FreeStorage = f.state.Size
	f.state.UsedBinsTop = 0
	f.state.UsedBins = [offsetalloc.TopBinCount]uint32{}
	for i := range f.state.BinIndices {
		f.state.BinIndices[i] = offsetalloc.NoNode
	}
	f.state.Nodes = f.state.Nodes[:0]
	f.freeSlots = f.freeSlots[:0]

	if f.state.Size == 0 {
		return
	}

	// The whole buffer starts as one free region. Its node keeps handle 0
	// forever: allocations split in place and merges always collapse into the
	// lower-offset node, so the region covering offset 0 never changes slots.
	head := f.newNode(0, f.state.Size)
	f.insertIntoBin(head)
}

func (f *FirstFit) node(handle offsetalloc.NodeHandle) *offsetalloc.Node {
	return &f.state.Nodes[handle]
}

func (f *FirstFit) newNode(offset, size uint32) offsetalloc.NodeHandle {
	var handle offsetalloc.NodeHandle
	if len(f.freeSlots) > 0 {
		handle = f.freeSlots[len(f.freeSlots)-1]
		f.freeSlots = f.freeSlots[:len(f.freeSlots)-1]
	} else {
		if uint32(len(f.state.Nodes)) >= f.state.MaxAllocs {
			panic(fmt.Sprintf("node pool exhausted: %d nodes live", len(f.state.Nodes)))
		}
		f.state.Nodes = append(f.state.Nodes, offsetalloc.Node{})
		handle = offsetalloc.NodeHandle(len(f.state.Nodes) - 1)
	}

	*f.node(handle) = offsetalloc.Node{
		DataOffset:   offset,
		DataSize:     size,
		BinListPrev:  offsetalloc.NoNode,
		BinListNext:  offsetalloc.NoNode,
		NeighborPrev: offsetalloc.NoNode,
		NeighborNext: offsetalloc.NoNode,
	}
	return handle
}

func (f *FirstFit) recycleNode(handle offsetalloc.NodeHandle) {
	*f.node(handle) = offsetalloc.Node{
		BinListPrev:  offsetalloc.NoNode,
		BinListNext:  offsetalloc.NoNode,
		NeighborPrev: offsetalloc.NoNode,
		NeighborNext: offsetalloc.NoNode,
	}
	f.freeSlots = append(f.freeSlots, handle)
}

// binIndexForSize buckets a size by its exponent (top) and the next five
// mantissa bits (leaf)- an approximate, rounded-down size class.
func binIndexForSize(size uint32) uint32 {
	top := uint32(bits.Len32(size)) - 1

	var leaf uint32
	if top >= offsetalloc.TopBinShift {
		leaf = (size >> (top - offsetalloc.TopBinShift)) & offsetalloc.LeafBinMask
	} else {
		leaf = (size << (offsetalloc.TopBinShift - top)) & offsetalloc.LeafBinMask
	}

	return offsetalloc.BinIndex(top, leaf)
}

// binApproxSize inverts binIndexForSize to the smallest size the bin holds.
func binApproxSize(index uint32) uint32 {
	top, leaf := offsetalloc.SplitBinIndex(index)
	return (offsetalloc.BinsPerLeaf + leaf) << top >> offsetalloc.TopBinShift
}

func (f *FirstFit) insertIntoBin(handle offsetalloc.NodeHandle) {
	node := f.node(handle)
	index := binIndexForSize(node.DataSize)
	top, leaf := offsetalloc.SplitBinIndex(index)

	head := f.state.BinIndices[index]
	node.BinListPrev = offsetalloc.NoNode
	node.BinListNext = head
	if head != offsetalloc.NoNode {
		f.node(head).BinListPrev = handle
	}

	f.state.BinIndices[index] = handle
	f.state.UsedBins[top] |= 1 << leaf
	f.state.UsedBinsTop |= 1 << top
}

func (f *FirstFit) removeFromBin(handle offsetalloc.NodeHandle) {
	node := f.node(handle)

	if node.BinListPrev != offsetalloc.NoNode {
		f.node(node.BinListPrev).BinListNext = node.BinListNext
		if node.BinListNext != offsetalloc.NoNode {
			f.node(node.BinListNext).BinListPrev = node.BinListPrev
		}
	} else {
		// Head of its bin list
		index := binIndexForSize(node.DataSize)
		top, leaf := offsetalloc.SplitBinIndex(index)

		f.state.BinIndices[index] = node.BinListNext
		if node.BinListNext != offsetalloc.NoNode {
			f.node(node.BinListNext).BinListPrev = offsetalloc.NoNode
		} else {
			f.state.UsedBins[top] &^= 1 << leaf
			if f.state.UsedBins[top] == 0 {
				f.state.UsedBinsTop &^= 1 << top
			}
		}
	}

	node.BinListPrev = offsetalloc.NoNode
	node.BinListNext = offsetalloc.NoNode
}

func (f *FirstFit) Allocate(size uint32) offsetalloc.Allocation {
	if size == 0 || size > f.state.FreeStorage {
		return offsetalloc.Allocation{Offset: offsetalloc.NoSpace}
	}

	// First fit, lowest offset: scan the physical chain from handle 0.
	handle := offsetalloc.NodeHandle(0)
	for handle != offsetalloc.NoNode {
		node := f.node(handle)
		if !node.Used && node.DataSize >= size {
			break
		}
		handle = node.NeighborNext
	}
	if handle == offsetalloc.NoNode {
		return offsetalloc.Allocation{Offset: offsetalloc.NoSpace}
	}

	node := f.node(handle)
	f.removeFromBin(handle)

	remainder := node.DataSize - size
	node.DataSize = size
	node.Used = true

	if remainder > 0 {
		tail := f.newNode(node.DataOffset+size, remainder)
		tailNode := f.node(tail)
		node = f.node(handle)

		tailNode.NeighborPrev = handle
		tailNode.NeighborNext = node.NeighborNext
		if node.NeighborNext != offsetalloc.NoNode {
			f.node(node.NeighborNext).NeighborPrev = tail
		}
		node.NeighborNext = tail

		f.insertIntoBin(tail)
	}

	f.state.FreeStorage -= size
	return offsetalloc.Allocation{Offset: node.DataOffset, Metadata: uint32(handle)}
}

func (f *FirstFit) Free(allocation offsetalloc.Allocation) {
	handle := offsetalloc.NodeHandle(allocation.Metadata)
	node := f.node(handle)
	if !node.Used || node.DataOffset != allocation.Offset {
		panic(fmt.Sprintf("free of non-live allocation at offset %d", allocation.Offset))
	}

	node.Used = false
	f.state.FreeStorage += node.DataSize

	// Merge with a free right neighbor
	if next := node.NeighborNext; next != offsetalloc.NoNode && !f.node(next).Used {
		nextNode := f.node(next)
		f.removeFromBin(next)

		node.DataSize += nextNode.DataSize
		node.NeighborNext = nextNode.NeighborNext
		if nextNode.NeighborNext != offsetalloc.NoNode {
			f.node(nextNode.NeighborNext).NeighborPrev = handle
		}
		f.recycleNode(next)
	}

	// Merge into a free left neighbor
	if prev := node.NeighborPrev; prev != offsetalloc.NoNode && !f.node(prev).Used {
		prevNode := f.node(prev)
		f.removeFromBin(prev)

		prevNode.DataSize += node.DataSize
		prevNode.NeighborNext = node.NeighborNext
		if node.NeighborNext != offsetalloc.NoNode {
			f.node(node.NeighborNext).NeighborPrev = prev
		}
		f.recycleNode(handle)
		handle = prev
	}

	f.insertIntoBin(handle)
}

func (f *FirstFit) Reset() {
	f.initState()
}

func (f *FirstFit) AllocationSize(allocation offsetalloc.Allocation) uint32 {
	return f.node(offsetalloc.NodeHandle(allocation.Metadata)).DataSize
}

func (f *FirstFit) StorageReport() offsetalloc.StorageReport {
	var largest uint32
	for i := range f.state.Nodes {
		node := &f.state.Nodes[i]
		if !node.Used && node.DataSize > largest {
			largest = node.DataSize
		}
	}

	return offsetalloc.StorageReport{
		TotalFreeSpace:    f.state.FreeStorage,
		LargestFreeRegion: largest,
	}
}

func (f *FirstFit) StorageReportFull() []offsetalloc.BinReport {
	reports := make([]offsetalloc.BinReport, offsetalloc.LeafBinCount)
	for index := uint32(0); index < offsetalloc.LeafBinCount; index++ {
		var count uint32
		for handle := f.state.BinIndices[index]; handle != offsetalloc.NoNode; handle = f.node(handle).BinListNext {
			count++
		}

		reports[index] = offsetalloc.BinReport{
			BinApproxSize: binApproxSize(index),
			Count:         count,
		}
	}

	return reports
}

func (f *FirstFit) RawState() *offsetalloc.RawState {
	return &f.state
}

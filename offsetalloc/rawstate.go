package offsetalloc

const (
	// TopBinCount is the number of leaf-groups tracked by the top bitset.
	TopBinCount = 32
	// BinsPerLeaf is the number of bins tracked by each leaf bitset word.
	BinsPerLeaf = 32
	// LeafBinCount is the total number of size-class bins.
	LeafBinCount = TopBinCount * BinsPerLeaf
	// TopBinShift extracts the top index from a flat bin index.
	TopBinShift = 5
	// LeafBinMask extracts the leaf index from a flat bin index.
	LeafBinMask = BinsPerLeaf - 1
)

// NodeHandle addresses a slot in the allocator's node pool.
type NodeHandle uint32

// NoNode is the reserved "no link" sentinel for NodeHandle fields.
const NoNode NodeHandle = 0xFFFFFFFF

// BinIndex composes a flat bin index from a top-group index and a leaf index.
func BinIndex(top, leaf uint32) uint32 {
	return top<<TopBinShift | leaf&LeafBinMask
}

// SplitBinIndex decomposes a flat bin index into its top and leaf components.
func SplitBinIndex(index uint32) (top, leaf uint32) {
	return index >> TopBinShift, index & LeafBinMask
}

// Node is one slot of the allocator's node pool. It describes a single
// contiguous region of the managed buffer and carries two independent link
// roles: bin free-list membership (meaningful only while !Used) and physical
// left-to-right neighbor order (meaningful always).
type Node struct {
	DataOffset uint32
	DataSize   uint32
	Used       bool

	BinListPrev NodeHandle
	BinListNext NodeHandle

	NeighborPrev NodeHandle
	NeighborNext NodeHandle
}

// RawState is the allocator's internal bookkeeping, exposed for read-only
// traversal by debugging tools.
//
// The bitset invariant: bit leaf of UsedBins[top] is set iff bin (top, leaf)
// has an occupied head slot in BinIndices, and bit top of UsedBinsTop is set
// iff any bit of UsedBins[top] is set.
type RawState struct {
	Size        uint32
	MaxAllocs   uint32
	FreeStorage uint32

	UsedBinsTop uint32
	UsedBins    [TopBinCount]uint32
	BinIndices  [LeafBinCount]NodeHandle

	Nodes []Node
}

// Node returns the pool slot for a handle, or false when the handle is the
// NoNode sentinel or outside the pool.
func (s *RawState) Node(handle NodeHandle) (*Node, bool) {
	if handle == NoNode || int(handle) >= len(s.Nodes) {
		return nil, false
	}
	return &s.Nodes[handle], true
}

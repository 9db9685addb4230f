package explore

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/explorer/offsetalloc"
)

// Region is one contiguous span of the managed buffer, reconstructed from the
// allocator's node pool.
type Region struct {
	Offset uint32
	Size   uint32
	Used   bool
	Node   offsetalloc.NodeHandle
}

// End returns the exclusive upper bound of the region's byte interval.
func (r Region) End() uint32 {
	return r.Offset + r.Size
}

// StateReader performs read-only traversals over an allocator's raw
// bookkeeping: the two-level used-bins bitsets, the bin index table and the
// node pool. It never mutates the state it reads.
type StateReader struct {
	state *offsetalloc.RawState
}

func NewStateReader(state *offsetalloc.RawState) *StateReader {
	return &StateReader{state: state}
}

// VisitBins calls visit once for every non-empty bin, in ascending bin-index
// order, with the head node stored in the bin index table. A set bitset bit
// whose bin head slot is empty is reported as ErrBinTableMismatch.
func (r *StateReader) VisitBins(visit func(top, leaf uint32, head offsetalloc.NodeHandle) error) error {
	for top := uint32(0); top < offsetalloc.TopBinCount; top++ {
		if r.state.UsedBinsTop&(1<<top) == 0 {
			continue
		}

		leafBits := r.state.UsedBins[top]
		for leaf := uint32(0); leaf < offsetalloc.BinsPerLeaf; leaf++ {
			if leafBits&(1<<leaf) == 0 {
				continue
			}

			head := r.state.BinIndices[offsetalloc.BinIndex(top, leaf)]
			if head == offsetalloc.NoNode {
				return errors.Wrapf(ErrBinTableMismatch, "bin (%d, %d) is marked non-empty but has no head node", top, leaf)
			}

			err := visit(top, leaf, head)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// FirstBinHead returns the head node of the lowest non-empty bin, or NoNode
// when every bin is empty (i.e. the buffer has no free regions).
func (r *StateReader) FirstBinHead() (offsetalloc.NodeHandle, error) {
	found := offsetalloc.NoNode
	err := r.VisitBins(func(top, leaf uint32, head offsetalloc.NodeHandle) error {
		found = head
		return errStopVisit
	})
	if err != nil && err != errStopVisit {
		return offsetalloc.NoNode, err
	}

	return found, nil
}

var errStopVisit = errors.New("stop bin visit")

// PhysicalChain reconstructs the full left-to-right chain of regions covering
// the buffer, starting from any node in the chain. Chains are not stored
// sorted by offset, so the walk first rewinds through NeighborPrev to the
// leftmost node, then advances through NeighborNext emitting regions in
// physical order.
//
// Each direction of the walk is bounded by MaxAllocs+1 steps. Exceeding the
// bound means the links are cyclic and the state is corrupt.
func (r *StateReader) PhysicalChain(start offsetalloc.NodeHandle) ([]Region, error) {
	maxSteps := r.state.MaxAllocs + 1

	head := start
	for steps := uint32(0); ; steps++ {
		if steps >= maxSteps {
			return nil, errors.Wrapf(ErrCorruptChain, "neighbor-prev walk from node %d exceeded %d steps", start, maxSteps)
		}

		node, ok := r.state.Node(head)
		if !ok {
			return nil, errors.Wrapf(ErrCorruptChain, "neighbor-prev walk from node %d reached dangling handle %d", start, head)
		}

		if node.NeighborPrev == offsetalloc.NoNode {
			break
		}
		head = node.NeighborPrev
	}

	var chain []Region
	current := head
	for steps := uint32(0); current != offsetalloc.NoNode; steps++ {
		if steps >= maxSteps {
			return nil, errors.Wrapf(ErrCorruptChain, "neighbor-next walk from node %d exceeded %d steps", head, maxSteps)
		}

		node, ok := r.state.Node(current)
		if !ok {
			return nil, errors.Wrapf(ErrCorruptChain, "neighbor-next walk from node %d reached dangling handle %d", head, current)
		}

		chain = append(chain, Region{
			Offset: node.DataOffset,
			Size:   node.DataSize,
			Used:   node.Used,
			Node:   current,
		})

		current = node.NeighborNext
	}

	return chain, nil
}

// Regions reconstructs the full physical chain starting from the lowest
// non-empty bin's head. When every bin is empty there are no free regions to
// anchor a walk, and nil is returned.
func (r *StateReader) Regions() ([]Region, error) {
	head, err := r.FirstBinHead()
	if err != nil {
		return nil, err
	}
	if head == offsetalloc.NoNode {
		return nil, nil
	}

	return r.PhysicalChain(head)
}

// CollectStatistics aggregates per-region statistics over the full physical
// chain into stats.
func (r *StateReader) CollectStatistics(stats *DetailedStatistics) error {
	chain, err := r.Regions()
	if err != nil {
		return err
	}

	for _, region := range chain {
		if region.Used {
			stats.AddAllocation(region.Size)
		} else if region.Size > 0 {
			stats.AddFreeRegion(region.Size)
		}
	}

	return nil
}

// Validate performs internal consistency checks over the raw state: the
// physical chain must start at offset 0, be contiguous, and its sizes must
// sum to the managed capacity.
func (r *StateReader) Validate() error {
	chain, err := r.Regions()
	if err != nil {
		return err
	}
	if chain == nil {
		return nil
	}

	if chain[0].Offset != 0 {
		return errors.Errorf("the first physical region should have an offset of 0, but instead it has an offset of %d", chain[0].Offset)
	}

	var total uint32
	for i, region := range chain {
		if region.Offset != total {
			return errors.Errorf("physical region %d starts at offset %d, but the previous region ended at offset %d", i, region.Offset, total)
		}
		total += region.Size
	}

	if total != r.state.Size {
		return errors.Errorf("the full size of the buffer is %d, but the physical regions only added up to %d", r.state.Size, total)
	}

	return nil
}

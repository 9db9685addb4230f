package explore

import (
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/explorer/offsetalloc"
	"golang.org/x/exp/slices"
)

// Registry is the client-side mirror of live allocations, keyed by offset.
// The allocator exposes no enumerate-all operation, so the registry is the
// only way to list what has been allocated through the explorer. It is never
// authoritative: the allocator's node pool is the single source of truth, and
// the registry must remain a projection of it for the history of operations
// issued through the explorer.
type Registry struct {
	entries *swiss.Map[uint32, offsetalloc.Allocation]
}

func NewRegistry() *Registry {
	return &Registry{
		entries: swiss.NewMap[uint32, offsetalloc.Allocation](42),
	}
}

// Put records a live allocation. Two live allocations can never share an
// offset, so a duplicate indicates the registry has diverged from the
// allocator.
func (r *Registry) Put(allocation offsetalloc.Allocation) error {
	_, present := r.entries.Get(allocation.Offset)
	if present {
		return errors.Wrapf(ErrRegistryDivergence, "an allocation at offset %d is already registered", allocation.Offset)
	}

	r.entries.Put(allocation.Offset, allocation)
	return nil
}

// ByOffset retrieves the live allocation at an offset, if any.
func (r *Registry) ByOffset(offset uint32) (offsetalloc.Allocation, bool) {
	return r.entries.Get(offset)
}

// Remove deletes the entry at an offset and returns it.
func (r *Registry) Remove(offset uint32) (offsetalloc.Allocation, bool) {
	allocation, present := r.entries.Get(offset)
	if present {
		r.entries.Delete(offset)
	}
	return allocation, present
}

func (r *Registry) Len() int {
	return r.entries.Count()
}

// Clear drops every entry. Used when the allocator is reset or destroyed.
func (r *Registry) Clear() {
	r.entries = swiss.NewMap[uint32, offsetalloc.Allocation](42)
}

// Allocations returns every live allocation ordered by ascending offset.
func (r *Registry) Allocations() []offsetalloc.Allocation {
	allocations := make([]offsetalloc.Allocation, 0, r.entries.Count())
	r.entries.Iter(func(offset uint32, allocation offsetalloc.Allocation) bool {
		allocations = append(allocations, allocation)
		return false
	})

	slices.SortFunc(allocations, func(a, b offsetalloc.Allocation) bool {
		return a.Offset < b.Offset
	})

	return allocations
}

// CheckAgainst verifies the registry's correspondence invariants against the
// allocator's raw state: entries must match the set of used nodes
// bijectively by offset, and no two entries' byte intervals may overlap.
// sizeOf resolves an entry's byte size, since the registry stores only the
// opaque allocation handle.
func (r *Registry) CheckAgainst(state *offsetalloc.RawState, sizeOf func(offsetalloc.Allocation) uint32) error {
	usedNodes := 0
	for handle := range state.Nodes {
		node := &state.Nodes[handle]
		if !node.Used {
			continue
		}

		usedNodes++
		_, present := r.entries.Get(node.DataOffset)
		if !present {
			return errors.Wrapf(ErrRegistryDivergence, "node %d is used at offset %d but has no registry entry", handle, node.DataOffset)
		}
	}

	if usedNodes != r.entries.Count() {
		return errors.Wrapf(ErrRegistryDivergence, "registry has %d entries but the node pool has %d used nodes", r.entries.Count(), usedNodes)
	}

	allocations := r.Allocations()
	for i := 1; i < len(allocations); i++ {
		prev := allocations[i-1]
		if prev.Offset+sizeOf(prev) > allocations[i].Offset {
			return errors.Wrapf(ErrRegistryDivergence, "allocations at offsets %d and %d overlap", prev.Offset, allocations[i].Offset)
		}
	}

	return nil
}

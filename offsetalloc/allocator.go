package offsetalloc

// Allocator is the collaborator contract for a segregated-fit, bin-indexed
// offset allocator managing a contiguous buffer of fixed capacity. The
// explorer consumes this interface read-mostly; the placement algorithm
// itself lives behind it.
type Allocator interface {
	// Allocate reserves a region of the requested size and returns its
	// Allocation handle. On failure the returned Allocation has Offset ==
	// NoSpace.
	Allocate(size uint32) Allocation
	// Free releases a previously returned Allocation. Behavior is undefined
	// if the Allocation is not currently live.
	Free(allocation Allocation)
	// Reset releases every live allocation. Capacity is unchanged.
	Reset()
	// AllocationSize returns the byte size reserved for a live Allocation.
	AllocationSize(allocation Allocation) uint32

	// StorageReport summarizes free space and the largest free region.
	StorageReport() StorageReport
	// StorageReportFull returns one BinReport per size-class bin, ordered by
	// ascending bin index.
	StorageReportFull() []BinReport

	// RawState exposes the allocator's internal bookkeeping for read-only
	// traversal: bin bitsets, the bin-to-head-node table, and the node pool.
	// Callers must not mutate the returned state and must not retain it
	// across allocator mutations.
	RawState() *RawState
}

package offsetalloc

// NoSpace is the sentinel offset returned by Allocator.Allocate when no free
// region can satisfy the request under the current fragmentation. It is a
// normal outcome, not an error.
const NoSpace uint32 = 0xFFFFFFFF

// Allocation is the opaque handle an Allocator returns for one reserved
// region. Offset is the byte offset of the region within the managed buffer.
// Metadata is allocator-internal and must be passed back unmodified to Free.
// Two Allocations are the same allocation iff both fields are equal.
type Allocation struct {
	Offset   uint32
	Metadata uint32
}

// IsNoSpace returns true if this Allocation is the allocation-failure sentinel.
func (a Allocation) IsNoSpace() bool {
	return a.Offset == NoSpace
}

// StorageReport is a cheap top-level summary of an allocator's free memory.
type StorageReport struct {
	TotalFreeSpace    uint32
	LargestFreeRegion uint32
}

// BinReport describes the population of a single size-class bin. BinApproxSize
// is the rounded size class the bin groups by, not an exact byte size.
type BinReport struct {
	BinApproxSize uint32
	Count         uint32
}

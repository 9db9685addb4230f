package explore

import "github.com/pkg/errors"

// ErrCorruptChain is the error returned when a node chain walk fails to
// terminate within the allocator's node budget
var ErrCorruptChain error = errors.New("node chain did not terminate within the allocator's node budget")

// ErrStructuralViolation is the error returned when a node's links disagree
// with each other during a hierarchy walk
var ErrStructuralViolation error = errors.New("node links are structurally inconsistent")

// ErrBinTableMismatch is the error returned when the used-bins bitsets mark a
// bin whose head slot is empty, or vice versa
var ErrBinTableMismatch error = errors.New("used-bins bitset disagrees with the bin index table")

// ErrRegistryDivergence is the error returned when the allocation registry no
// longer mirrors the allocator's set of used nodes
var ErrRegistryDivergence error = errors.New("allocation registry has diverged from allocator state")

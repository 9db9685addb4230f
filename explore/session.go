package explore

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/explorer/offsetalloc"
	"golang.org/x/exp/slog"
)

// Factory instantiates the external allocator collaborator for a managed
// buffer of the given capacity and maximum concurrent allocation count.
type Factory func(size uint32, maxAllocs uint32) offsetalloc.Allocator

// Session is one allocator-plus-registry pair. The pair is created together,
// mutated together, and destroyed together; the registry is cleared whenever
// the allocator is reset. Sessions are explicit values rather than process
// state so tests (and hosts) can run several independently.
type Session struct {
	allocator offsetalloc.Allocator
	registry  *Registry
	logger    *slog.Logger
}

func NewSession(allocator offsetalloc.Allocator, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		allocator: allocator,
		registry:  NewRegistry(),
		logger:    logger,
	}
}

func (s *Session) Allocator() offsetalloc.Allocator { return s.allocator }
func (s *Session) Registry() *Registry              { return s.registry }

// Reader returns a read-only traversal over the allocator's current raw
// state. The reader must not be retained across mutations.
func (s *Session) Reader() *StateReader {
	return NewStateReader(s.allocator.RawState())
}

// Allocate requests size bytes from the allocator and mirrors the result in
// the registry. A NoSpace result is a normal outcome (capacity exhausted or
// fragmentation) and leaves the registry untouched. Non-positive sizes are
// rejected the same way.
func (s *Session) Allocate(size uint32) (offsetalloc.Allocation, bool) {
	if size == 0 {
		return offsetalloc.Allocation{Offset: offsetalloc.NoSpace}, false
	}

	allocation := s.allocator.Allocate(size)
	if allocation.IsNoSpace() {
		s.logger.Debug("Session::Allocate produced no space", slog.Uint64("Size", uint64(size)))
		return allocation, false
	}

	err := s.registry.Put(allocation)
	if err != nil {
		panic(err)
	}

	s.logger.Debug("Session::Allocate",
		slog.Uint64("Offset", uint64(allocation.Offset)),
		slog.Uint64("Size", uint64(size)))

	DebugValidate(s)
	return allocation, true
}

// FreeAt releases the allocation whose region starts at offset. A used region
// with no matching registry entry means the registry and allocator have
// diverged, which this tool must surface rather than hide.
func (s *Session) FreeAt(offset uint32) error {
	allocation, present := s.registry.Remove(offset)
	if !present {
		return errors.Wrapf(ErrRegistryDivergence, "no registry entry for used region at offset %d", offset)
	}

	s.allocator.Free(allocation)
	s.logger.Debug("Session::FreeAt", slog.Uint64("Offset", uint64(offset)))

	DebugValidate(s)
	return nil
}

// Clear releases every allocation and empties the registry. Capacity is
// unchanged.
func (s *Session) Clear() {
	s.registry.Clear()
	s.allocator.Reset()
	s.logger.Debug("Session::Clear")

	DebugValidate(s)
}

// Validate checks every cross-component invariant of the session: chain
// conservation in the raw state, plus registry correspondence and interval
// disjointness.
func (s *Session) Validate() error {
	state := s.allocator.RawState()

	err := NewStateReader(state).Validate()
	if err != nil {
		return err
	}

	return s.registry.CheckAgainst(state, s.allocator.AllocationSize)
}

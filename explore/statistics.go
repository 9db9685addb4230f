package explore

import "math"

type Statistics struct {
	AllocationCount int
	FreeRegionCount int
	AllocationBytes uint32
	FreeBytes       uint32
}

func (s *Statistics) Clear() {
	s.AllocationCount = 0
	s.FreeRegionCount = 0
	s.AllocationBytes = 0
	s.FreeBytes = 0
}

type DetailedStatistics struct {
	Statistics
	AllocationSizeMin uint32
	AllocationSizeMax uint32
	FreeRegionSizeMin uint32
	FreeRegionSizeMax uint32
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.AllocationSizeMin = math.MaxUint32
	s.AllocationSizeMax = 0
	s.FreeRegionSizeMin = math.MaxUint32
	s.FreeRegionSizeMax = 0
}

func (s *DetailedStatistics) AddAllocation(size uint32) {
	s.AllocationCount++
	s.AllocationBytes += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddFreeRegion(size uint32) {
	s.FreeRegionCount++
	s.FreeBytes += size

	if size < s.FreeRegionSizeMin {
		s.FreeRegionSizeMin = size
	}

	if size > s.FreeRegionSizeMax {
		s.FreeRegionSizeMax = size
	}
}

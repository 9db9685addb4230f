package explore_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/explorer/explore"
	"github.com/vkngwrapper/explorer/offsetalloc"
	"github.com/vkngwrapper/explorer/offsetalloc/offsetalloctest"
)

// recordingSink flattens a hierarchy walk into text lines for assertions.
type recordingSink struct {
	lines []string
	depth int
}

func (s *recordingSink) BeginNode(handle offsetalloc.NodeHandle, format string, args ...any) bool {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
	s.depth++
	return true
}

func (s *recordingSink) EndNode() {
	s.depth--
}

func (s *recordingSink) Attribute(format string, args ...any) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

func TestHierarchyVisitHealthyBinList(t *testing.T) {
	state := &offsetalloc.RawState{
		Size:      100,
		MaxAllocs: 4,
		Nodes: []offsetalloc.Node{
			{
				DataOffset: 0, DataSize: 40,
				BinListPrev: offsetalloc.NoNode, BinListNext: 1,
				NeighborPrev: offsetalloc.NoNode, NeighborNext: offsetalloc.NoNode,
			},
			{
				DataOffset: 60, DataSize: 40,
				BinListPrev: 0, BinListNext: offsetalloc.NoNode,
				NeighborPrev: offsetalloc.NoNode, NeighborNext: offsetalloc.NoNode,
			},
		},
	}

	sink := &recordingSink{}
	err := explore.NewHierarchy(state).Visit(0, sink)
	require.NoError(t, err)
	require.Equal(t, 0, sink.depth)

	// Both nodes are emitted once; the back-link renders as a reference
	require.Contains(t, sink.lines, "Node: 0")
	require.Contains(t, sink.lines, "Node: 1")
	require.Contains(t, sink.lines, "Previous bin: node 0 (shown above)")
}

func TestHierarchyVisitDetectsBrokenReverseLink(t *testing.T) {
	// Node 1 claims node 0 as its bin successor, but node 0 does not link back
	state := &offsetalloc.RawState{
		Size:      100,
		MaxAllocs: 4,
		Nodes: []offsetalloc.Node{
			{
				DataOffset: 0, DataSize: 40,
				BinListPrev: offsetalloc.NoNode, BinListNext: 1,
				NeighborPrev: offsetalloc.NoNode, NeighborNext: offsetalloc.NoNode,
			},
			{
				DataOffset: 60, DataSize: 40,
				BinListPrev: offsetalloc.NoNode, BinListNext: 0,
				NeighborPrev: offsetalloc.NoNode, NeighborNext: offsetalloc.NoNode,
			},
		},
	}

	sink := &recordingSink{}
	err := explore.NewHierarchy(state).Visit(0, sink)
	require.ErrorIs(t, err, explore.ErrStructuralViolation)
}

func TestHierarchyVisitDetectsDanglingLink(t *testing.T) {
	state := &offsetalloc.RawState{
		Size:      100,
		MaxAllocs: 4,
		Nodes: []offsetalloc.Node{
			{
				DataOffset: 0, DataSize: 100,
				BinListPrev: offsetalloc.NoNode, BinListNext: 57,
				NeighborPrev: offsetalloc.NoNode, NeighborNext: offsetalloc.NoNode,
			},
		},
	}

	sink := &recordingSink{}
	err := explore.NewHierarchy(state).Visit(0, sink)
	require.ErrorIs(t, err, explore.ErrStructuralViolation)
}

func TestHierarchyVisitEmitsNodeDetail(t *testing.T) {
	allocator := offsetalloctest.New(1024, 128)
	allocator.Allocate(100)

	state := allocator.RawState()
	reader := explore.NewStateReader(state)
	head, err := reader.FirstBinHead()
	require.NoError(t, err)
	require.NotEqual(t, offsetalloc.NoNode, head)

	sink := &recordingSink{}
	require.NoError(t, explore.NewHierarchy(state).Visit(head, sink))

	require.Contains(t, sink.lines, "Offset: 100")
	require.Contains(t, sink.lines, "Size: 924")
	require.Contains(t, sink.lines, "Block unused")
	require.Contains(t, sink.lines, "Block in use")
}

func TestHierarchyWriteJSON(t *testing.T) {
	allocator := offsetalloctest.New(1024, 128)
	allocator.Allocate(100)
	a2 := allocator.Allocate(200)
	allocator.Free(a2)

	writer := jwriter.NewWriter()
	err := explore.NewHierarchy(allocator.RawState()).WriteJSON(&writer)
	require.NoError(t, err)
	require.NoError(t, writer.Error())

	var dump struct {
		TotalBytes  int
		MaxAllocs   int
		FreeStorage int
		Bins        []struct {
			Index int
			Top   int
			Leaf  int
			Head  int
		}
		Regions []struct {
			Node   int
			Offset int
			Size   int
			Type   string
		}
	}
	require.NoError(t, json.Unmarshal(writer.Bytes(), &dump))

	require.Equal(t, 1024, dump.TotalBytes)
	require.Equal(t, 128, dump.MaxAllocs)
	require.Equal(t, 924, dump.FreeStorage)
	require.NotEmpty(t, dump.Bins)

	require.Len(t, dump.Regions, 2)
	require.Equal(t, "Allocated", dump.Regions[0].Type)
	require.Equal(t, 0, dump.Regions[0].Offset)
	require.Equal(t, "Free", dump.Regions[1].Type)
	require.Equal(t, 100, dump.Regions[1].Offset)
	require.Equal(t, 924, dump.Regions[1].Size)
}

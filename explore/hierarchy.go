package explore

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/explorer/offsetalloc"
)

// TreeSink receives the hierarchy dump. The frontend adapter satisfies it for
// the metadata panel; tests satisfy it with an in-memory recorder.
type TreeSink interface {
	// BeginNode opens a subtree for a node. Returning false collapses the
	// subtree: its attributes and links are not emitted and EndNode is not
	// called.
	BeginNode(handle offsetalloc.NodeHandle, format string, args ...any) bool
	EndNode()
	// Attribute emits one line of detail under the currently open node.
	Attribute(format string, args ...any)
}

// linkRole names one of a node's four link fields together with the reverse
// field that a well-formed link partner must point back through.
type linkRole struct {
	label   string
	link    func(*offsetalloc.Node) offsetalloc.NodeHandle
	reverse func(*offsetalloc.Node) offsetalloc.NodeHandle
}

var linkRoles = [4]linkRole{
	{
		label:   "Previous bin",
		link:    func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.BinListPrev },
		reverse: func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.BinListNext },
	},
	{
		label:   "Next bin",
		link:    func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.BinListNext },
		reverse: func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.BinListPrev },
	},
	{
		label:   "Previous neighbor",
		link:    func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.NeighborPrev },
		reverse: func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.NeighborNext },
	},
	{
		label:   "Next neighbor",
		link:    func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.NeighborNext },
		reverse: func(n *offsetalloc.Node) offsetalloc.NodeHandle { return n.NeighborPrev },
	},
}

// Hierarchy renders the recursive bin -> node-chain -> node-detail dump used
// to debug malformed allocator state.
type Hierarchy struct {
	state *offsetalloc.RawState
}

func NewHierarchy(state *offsetalloc.RawState) *Hierarchy {
	return &Hierarchy{state: state}
}

// Visit performs one top-level walk rooted at start, emitting each node's
// offset, size and used flag, then descending into its non-sentinel links.
//
// A visited set bounds the recursion: links that lead back to a node already
// emitted in this walk are rendered as back-references instead of being
// entered again. A back-reference whose target does not link back through the
// reciprocal field is a structural violation and aborts the walk, since
// hiding a malformed link would defeat the tool's purpose.
func (h *Hierarchy) Visit(start offsetalloc.NodeHandle, sink TreeSink) error {
	visited := map[offsetalloc.NodeHandle]struct{}{}
	return h.visitNode(start, sink, visited)
}

func (h *Hierarchy) visitNode(handle offsetalloc.NodeHandle, sink TreeSink, visited map[offsetalloc.NodeHandle]struct{}) error {
	node, ok := h.state.Node(handle)
	if !ok {
		return errors.Wrapf(ErrStructuralViolation, "walk reached dangling node handle %d", handle)
	}

	if _, seen := visited[handle]; seen {
		return errors.Wrapf(ErrStructuralViolation, "node %d was reached twice in one walk", handle)
	}
	visited[handle] = struct{}{}

	if !sink.BeginNode(handle, "Node: %d", handle) {
		return nil
	}
	defer sink.EndNode()

	sink.Attribute("Offset: %d", node.DataOffset)
	sink.Attribute("Size: %d", node.DataSize)
	if node.Used {
		sink.Attribute("Block in use")
	} else {
		sink.Attribute("Block unused")
	}

	for _, role := range linkRoles {
		target := role.link(node)
		if target == offsetalloc.NoNode {
			continue
		}

		if _, seen := visited[target]; seen {
			targetNode, ok := h.state.Node(target)
			if !ok {
				return errors.Wrapf(ErrStructuralViolation, "%s link of node %d is the dangling handle %d", role.label, handle, target)
			}
			if role.reverse(targetNode) != handle {
				return errors.Wrapf(ErrStructuralViolation, "node %d links to node %d as %s, but the reverse reference is broken", handle, target, role.label)
			}

			sink.Attribute("%s: node %d (shown above)", role.label, target)
			continue
		}

		sink.Attribute("%s:", role.label)
		err := h.visitNode(target, sink, visited)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteJSON writes a machine-readable dump of the allocator state: scalar
// counters, the non-empty bins, and the full physical region chain.
func (h *Hierarchy) WriteJSON(writer *jwriter.Writer) error {
	reader := NewStateReader(h.state)

	obj := writer.Object()
	defer obj.End()

	obj.Name("TotalBytes").Int(int(h.state.Size))
	obj.Name("MaxAllocs").Int(int(h.state.MaxAllocs))
	obj.Name("FreeStorage").Int(int(h.state.FreeStorage))

	bins := obj.Name("Bins").Array()
	err := reader.VisitBins(func(top, leaf uint32, head offsetalloc.NodeHandle) error {
		binObj := bins.Object()
		defer binObj.End()

		binObj.Name("Index").Int(int(offsetalloc.BinIndex(top, leaf)))
		binObj.Name("Top").Int(int(top))
		binObj.Name("Leaf").Int(int(leaf))
		binObj.Name("Head").Int(int(head))
		return nil
	})
	bins.End()
	if err != nil {
		return err
	}

	chain, err := reader.Regions()
	if err != nil {
		return err
	}

	regions := obj.Name("Regions").Array()
	defer regions.End()

	for _, region := range chain {
		regionObj := regions.Object()

		regionObj.Name("Node").Int(int(region.Node))
		regionObj.Name("Offset").Int(int(region.Offset))
		regionObj.Name("Size").Int(int(region.Size))
		if region.Used {
			regionObj.Name("Type").String("Allocated")
		} else {
			regionObj.Name("Type").String("Free")
		}

		regionObj.End()
	}

	return nil
}

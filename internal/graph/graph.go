package graph

import (
	"fmt"
	"slices"

	"github.com/ConnectedSystems/openwater/internal/registry"
)

// NodeRef is an opaque handle to a node in a Graph's arena. Refs are dense,
// assigned in insertion order, and only meaningful against the graph that
// issued them.
type NodeRef int

// Node is the public view of one computational unit in the graph.
type Node struct {
	Ref  NodeRef
	Kind string
	// Tags is owned by the graph. Callers must not mutate it.
	Tags Tags
}

// Link is a directed, port-addressed connection between two nodes: From's
// output port feeds To's input port.
type Link struct {
	From     NodeRef
	FromPort string
	To       NodeRef
	ToPort   string
}

// Graph is the arena owning all instantiated nodes and links.
type Graph struct {
	reg   *registry.Registry
	nodes []Node
	index map[string]NodeRef

	links    []Link
	linkSeen map[Link]struct{}
	in       [][]int // per-node indices into links, insertion order
	out      [][]int
}

// New returns an empty graph. A nil registry disables model-kind and port
// validation; with a registry attached, AddNode rejects unknown kinds and
// AddLink rejects undeclared ports.
func New(reg *registry.Registry) *Graph {
	return &Graph{
		reg:      reg,
		index:    make(map[string]NodeRef),
		linkSeen: make(map[Link]struct{}),
	}
}

// AddNode adds a node with the given model kind and tag set and returns its
// ref. The tag map is copied. Adding a node whose identity is already
// present fails with DuplicateNodeError.
func (g *Graph) AddNode(kind string, tags Tags) (NodeRef, error) {
	ref, created, err := g.ensure(kind, tags)
	if err != nil {
		return 0, err
	}
	if !created {
		return 0, &DuplicateNodeError{Kind: kind, Tags: g.nodes[ref].Tags}
	}
	return ref, nil
}

// EnsureNode returns the ref of the node with the given identity, adding it
// first if absent. The second return reports whether a node was created.
// Template instantiation is built on this get-or-create behavior.
func (g *Graph) EnsureNode(kind string, tags Tags) (NodeRef, bool, error) {
	return g.ensure(kind, tags)
}

func (g *Graph) ensure(kind string, tags Tags) (NodeRef, bool, error) {
	if kind == "" {
		return 0, false, fmt.Errorf("model kind must not be empty")
	}
	if _, ok := tags[TagModel]; ok {
		return 0, false, fmt.Errorf("node of model %q: %w", kind, ErrReservedTagKey)
	}
	if g.reg != nil {
		if _, err := g.reg.Describe(kind); err != nil {
			return 0, false, err
		}
	}

	key := identityKey(kind, tags)
	if ref, ok := g.index[key]; ok {
		return ref, false, nil
	}

	ref := NodeRef(len(g.nodes))
	g.nodes = append(g.nodes, Node{Ref: ref, Kind: kind, Tags: tags.Clone()})
	g.index[key] = ref
	g.in = append(g.in, nil)
	g.out = append(g.out, nil)
	return ref, true, nil
}

// AddLink connects from's output port to to's input port. Re-adding an
// identical link is a no-op, which keeps repeated template instantiation
// from double-counting under the summation rule. Port names are validated
// when a registry is attached.
func (g *Graph) AddLink(from NodeRef, fromPort string, to NodeRef, toPort string) error {
	if !g.Contains(from) {
		return &UnknownNodeError{Ref: from}
	}
	if !g.Contains(to) {
		return &UnknownNodeError{Ref: to}
	}
	if g.reg != nil {
		if err := g.checkPort(g.nodes[from].Kind, fromPort, PortOutput); err != nil {
			return err
		}
		if err := g.checkPort(g.nodes[to].Kind, toPort, PortInput); err != nil {
			return err
		}
	}

	l := Link{From: from, FromPort: fromPort, To: to, ToPort: toPort}
	if _, ok := g.linkSeen[l]; ok {
		return nil
	}
	g.linkSeen[l] = struct{}{}

	idx := len(g.links)
	g.links = append(g.links, l)
	g.out[from] = append(g.out[from], idx)
	g.in[to] = append(g.in[to], idx)
	return nil
}

func (g *Graph) checkPort(kind, port, direction string) error {
	desc, err := g.reg.Describe(kind)
	if err != nil {
		return err
	}
	names := desc.Outputs
	if direction == PortInput {
		names = desc.Inputs
	}
	if slices.Contains(names, port) {
		return nil
	}
	return &InvalidPortError{Kind: kind, Port: port, Direction: direction}
}

// Contains reports whether ref names a node in this graph.
func (g *Graph) Contains(ref NodeRef) bool {
	return ref >= 0 && int(ref) < len(g.nodes)
}

// Node returns the node for ref. It panics if ref is not in the graph.
func (g *Graph) Node(ref NodeRef) Node {
	return g.nodes[ref]
}

// NodeCount returns the number of nodes. Refs run 0..NodeCount-1.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// LinkCount returns the number of distinct links.
func (g *Graph) LinkCount() int {
	return len(g.links)
}

// Nodes returns all nodes in insertion order. Callers must not modify the
// returned slice.
func (g *Graph) Nodes() []Node {
	return g.nodes
}

// Links returns all links in insertion order. Callers must not modify the
// returned slice.
func (g *Graph) Links() []Link {
	return g.links
}

// InLinks returns the links feeding ref's input ports, in the order they
// were added. That order fixes the summation order at evaluation time.
func (g *Graph) InLinks(ref NodeRef) []Link {
	return g.linksAt(g.in[ref])
}

// OutLinks returns the links leaving ref's output ports, in the order they
// were added.
func (g *Graph) OutLinks(ref NodeRef) []Link {
	return g.linksAt(g.out[ref])
}

func (g *Graph) linksAt(idx []int) []Link {
	out := make([]Link, len(idx))
	for i, li := range idx {
		out[i] = g.links[li]
	}
	return out
}

// Predecessors returns the distinct upstream nodes of ref, ordered by their
// first contributing link. A node connected through several ports appears
// once.
func (g *Graph) Predecessors(ref NodeRef) []NodeRef {
	return g.distinct(g.in[ref], func(l Link) NodeRef { return l.From })
}

// Successors returns the distinct downstream nodes of ref, ordered by their
// first connecting link.
func (g *Graph) Successors(ref NodeRef) []NodeRef {
	return g.distinct(g.out[ref], func(l Link) NodeRef { return l.To })
}

func (g *Graph) distinct(idx []int, end func(Link) NodeRef) []NodeRef {
	refs := make([]NodeRef, 0, len(idx))
	seen := make(map[NodeRef]struct{}, len(idx))
	for _, li := range idx {
		ref := end(g.links[li])
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

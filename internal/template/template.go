package template

import (
	"errors"
	"fmt"

	"github.com/ConnectedSystems/openwater/internal/graph"
)

// ErrFrozen is returned when a template is mutated after its first
// instantiation.
var ErrFrozen = errors.New("template is frozen after first instantiation")

// NodeRef is a handle into a template's own node space. It is distinct from
// graph.NodeRef; the mapping between the two is established per
// instantiation.
type NodeRef int

type node struct {
	kind string
	tags graph.Tags
}

type link struct {
	from     NodeRef
	fromPort string
	to       NodeRef
	toPort   string
}

// Template is a reusable blueprint of nodes and links. It validates the
// same identity rules as the graph arena; model kinds and port names are
// checked at instantiation time, against the target graph's registry.
type Template struct {
	nodes  []node
	links  []link
	index  map[string]NodeRef
	seen   map[link]struct{}
	frozen bool
}

// New returns an empty template.
func New() *Template {
	return &Template{
		index: make(map[string]NodeRef),
		seen:  make(map[link]struct{}),
	}
}

// AddNode adds a node blueprint and returns its template-scoped ref.
// Identity rules match the graph arena: the same kind and tag set twice is
// a DuplicateNodeError.
func (t *Template) AddNode(kind string, tags graph.Tags) (NodeRef, error) {
	if t.frozen {
		return 0, ErrFrozen
	}
	if kind == "" {
		return 0, fmt.Errorf("model kind must not be empty")
	}
	if _, ok := tags[graph.TagModel]; ok {
		return 0, fmt.Errorf("node of model %q: %w", kind, graph.ErrReservedTagKey)
	}

	key := identityKey(kind, tags)
	if _, ok := t.index[key]; ok {
		return 0, &graph.DuplicateNodeError{Kind: kind, Tags: tags.Clone()}
	}

	ref := NodeRef(len(t.nodes))
	t.nodes = append(t.nodes, node{kind: kind, tags: tags.Clone()})
	t.index[key] = ref
	return ref, nil
}

// AddLink connects two template nodes by port. Both refs must come from
// this template. Re-adding an identical link is a no-op.
func (t *Template) AddLink(from NodeRef, fromPort string, to NodeRef, toPort string) error {
	if t.frozen {
		return ErrFrozen
	}
	if !t.contains(from) {
		return &graph.UnknownNodeError{Ref: graph.NodeRef(from)}
	}
	if !t.contains(to) {
		return &graph.UnknownNodeError{Ref: graph.NodeRef(to)}
	}

	l := link{from: from, fromPort: fromPort, to: to, toPort: toPort}
	if _, ok := t.seen[l]; ok {
		return nil
	}
	t.seen[l] = struct{}{}
	t.links = append(t.links, l)
	return nil
}

func (t *Template) contains(ref NodeRef) bool {
	return ref >= 0 && int(ref) < len(t.nodes)
}

// NodeCount returns the number of node blueprints.
func (t *Template) NodeCount() int {
	return len(t.nodes)
}

// LinkCount returns the number of distinct link blueprints.
func (t *Template) LinkCount() int {
	return len(t.links)
}

// Frozen reports whether the template has been instantiated at least once.
func (t *Template) Frozen() bool {
	return t.frozen
}

// Instantiate stamps the template into g, merging extra into every node's
// tags. A nil g starts a fresh graph without a registry. The first call
// freezes the template.
//
// Node creation is get-or-create over identity, so instantiating twice with
// the same extra tags changes nothing, and nodes shared between templates
// (same kind and merged tags) collapse into one. Template links are
// recreated between the resolved nodes; identical links already present are
// left alone. On error the graph may hold a partial instantiation.
func (t *Template) Instantiate(g *graph.Graph, extra graph.Tags) (*graph.Graph, error) {
	t.frozen = true
	if g == nil {
		g = graph.New(nil)
	}

	refs := make([]graph.NodeRef, len(t.nodes))
	for i, n := range t.nodes {
		merged, conflict := n.tags.Merge(extra)
		if conflict != "" {
			return g, fmt.Errorf(
				"instantiate node of model %q: tag key %q held by both template tags %s and instantiation tags %s",
				n.kind, conflict, n.tags, extra)
		}
		ref, _, err := g.EnsureNode(n.kind, merged)
		if err != nil {
			return g, fmt.Errorf("instantiate node of model %q: %w", n.kind, err)
		}
		refs[i] = ref
	}

	for _, l := range t.links {
		if err := g.AddLink(refs[l.from], l.fromPort, refs[l.to], l.toPort); err != nil {
			return g, fmt.Errorf("instantiate link %s -> %s: %w", l.fromPort, l.toPort, err)
		}
	}
	return g, nil
}

func identityKey(kind string, tags graph.Tags) string {
	return kind + tags.Canonical()
}

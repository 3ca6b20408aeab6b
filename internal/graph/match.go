package graph

// MatchNodes returns every node whose kind and tags satisfy all predicate
// pairs, in node insertion order. The reserved TagModel key matches against
// the node's model kind; every other key must equal the node's tag value
// exactly. An empty predicate set matches every node, and no matches is an
// empty result, not an error.
func (g *Graph) MatchNodes(predicates Tags) []NodeRef {
	var refs []NodeRef
	for i := range g.nodes {
		if g.nodeMatches(&g.nodes[i], predicates) {
			refs = append(refs, NodeRef(i))
		}
	}
	return refs
}

// MatchOne returns the single node satisfying the predicates. Zero matches
// yield UnknownNodeError and more than one yields AmbiguousNodeError, both
// carrying the predicate set.
func (g *Graph) MatchOne(predicates Tags) (NodeRef, error) {
	refs := g.MatchNodes(predicates)
	switch len(refs) {
	case 0:
		return -1, &UnknownNodeError{Ref: -1, Predicates: predicates.Clone()}
	case 1:
		return refs[0], nil
	default:
		return -1, &AmbiguousNodeError{Predicates: predicates.Clone(), Refs: refs}
	}
}

func (g *Graph) nodeMatches(n *Node, predicates Tags) bool {
	for k, want := range predicates {
		if k == TagModel {
			if n.Kind != want {
				return false
			}
			continue
		}
		if got, ok := n.Tags[k]; !ok || got != want {
			return false
		}
	}
	return true
}

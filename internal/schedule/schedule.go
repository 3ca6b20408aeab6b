package schedule

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/ConnectedSystems/openwater/internal/ctxlog"
	"github.com/ConnectedSystems/openwater/internal/graph"
)

// Stage is one layer of the plan: nodes whose dependencies are all
// satisfied by strictly earlier stages, listed in ascending ref order.
type Stage struct {
	Nodes []graph.NodeRef
}

// Count returns the stage's cardinality. Wider stages mean more exploitable
// parallelism at that point of the computation.
func (s Stage) Count() int {
	return len(s.Nodes)
}

// Batch groups a stage's nodes of one model kind, the unit of same-type
// batched dispatch.
type Batch struct {
	Kind  string
	Nodes []graph.NodeRef
}

// Batches splits the stage's members by model kind, kinds sorted.
func (s Stage) Batches(g *graph.Graph) []Batch {
	byKind := make(map[string][]graph.NodeRef)
	for _, ref := range s.Nodes {
		kind := g.Node(ref).Kind
		byKind[kind] = append(byKind[kind], ref)
	}

	kinds := make([]string, 0, len(byKind))
	for kind := range byKind {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	batches := make([]Batch, len(kinds))
	for i, kind := range kinds {
		batches[i] = Batch{Kind: kind, Nodes: byKind[kind]}
	}
	return batches
}

// Plan is the compiled stage decomposition of one graph.
type Plan struct {
	Stages  []Stage
	stageOf []int
}

// StageCount returns the number of stages.
func (p *Plan) StageCount() int {
	return len(p.Stages)
}

// NodeCount returns the number of scheduled nodes.
func (p *Plan) NodeCount() int {
	return len(p.stageOf)
}

// StageIndex returns the stage holding ref. It panics if ref is not from
// the scheduled graph.
func (p *Plan) StageIndex(ref graph.NodeRef) int {
	return p.stageOf[ref]
}

// MaxWidth returns the cardinality of the widest stage, 0 for an empty plan.
func (p *Plan) MaxWidth() int {
	widest := 0
	for _, s := range p.Stages {
		if s.Count() > widest {
			widest = s.Count()
		}
	}
	return widest
}

// CyclicGraphError reports that the graph cannot be staged because it
// contains a dependency cycle. The named node lies on one such cycle.
type CyclicGraphError struct {
	Ref  graph.NodeRef
	Kind string
	Tags graph.Tags
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("graph has a dependency cycle through node of model %q with tags %s", e.Kind, e.Tags)
}

// Build computes the longest-path layering of g. The stage assignment is a
// pure function of graph identity: a node's index depends only on its
// dependency depth, never on insertion order. An empty graph yields an
// empty plan. A cycle anywhere fails the whole build with CyclicGraphError.
//
// The frontier sweep is iterative, so graphs with very long dependency
// chains do not grow the call stack.
func Build(ctx context.Context, g *graph.Graph) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	n := g.NodeCount()

	plan := &Plan{stageOf: make([]int, n)}
	for i := range plan.stageOf {
		plan.stageOf[i] = -1
	}
	if n == 0 {
		return plan, nil
	}

	// Collapse port-level links to distinct node-level dependencies.
	succ := make([][]graph.NodeRef, n)
	indegree := make([]int, n)
	type edge struct{ from, to graph.NodeRef }
	seen := make(map[edge]struct{}, g.LinkCount())
	for _, l := range g.Links() {
		e := edge{from: l.From, to: l.To}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		succ[l.From] = append(succ[l.From], l.To)
		indegree[l.To]++
	}

	var frontier []graph.NodeRef
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			frontier = append(frontier, graph.NodeRef(i))
		}
	}

	placed := 0
	for len(frontier) > 0 {
		stage := len(plan.Stages)
		for _, ref := range frontier {
			plan.stageOf[ref] = stage
		}
		placed += len(frontier)
		plan.Stages = append(plan.Stages, Stage{Nodes: frontier})

		var next []graph.NodeRef
		for _, ref := range frontier {
			for _, dep := range succ[ref] {
				indegree[dep]--
				if indegree[dep] == 0 {
					next = append(next, dep)
				}
			}
		}
		slices.Sort(next)
		frontier = next
	}

	if placed < n {
		node := g.Node(findCycleMember(g, plan.stageOf))
		return nil, &CyclicGraphError{Ref: node.Ref, Kind: node.Kind, Tags: node.Tags}
	}

	logger.Debug("Stage decomposition complete.",
		"node_count", n,
		"stage_count", plan.StageCount(),
		"max_width", plan.MaxWidth())
	return plan, nil
}

// findCycleMember walks predecessor pointers inside the unplaced subgraph
// until a node repeats. Every unplaced node has at least one unplaced
// predecessor, so the walk terminates within n steps on a true cycle
// member, not merely a downstream casualty of one.
func findCycleMember(g *graph.Graph, stageOf []int) graph.NodeRef {
	var start graph.NodeRef = -1
	for i, s := range stageOf {
		if s == -1 {
			start = graph.NodeRef(i)
			break
		}
	}

	visited := make(map[graph.NodeRef]struct{})
	cur := start
	for {
		if _, again := visited[cur]; again {
			return cur
		}
		visited[cur] = struct{}{}

		for _, l := range g.InLinks(cur) {
			if stageOf[l.From] == -1 {
				cur = l.From
				break
			}
		}
	}
}

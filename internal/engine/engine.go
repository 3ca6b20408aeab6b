package engine

import (
	"fmt"
	"runtime"

	"go.opentelemetry.io/otel/trace"

	"github.com/ConnectedSystems/openwater/internal/graph"
	"github.com/ConnectedSystems/openwater/internal/registry"
	"github.com/ConnectedSystems/openwater/internal/schedule"
)

// Options tune a run. The zero value means: one worker per CPU, a single
// timestep, no forcing, no probes.
type Options struct {
	Workers   int
	Timesteps int
	Forcing   Forcing
	Probes    []Probe
	// OnStep is called after each completed timestep, for progress
	// reporting and metrics.
	OnStep func(step int)
	// Tracer, when set, wraps the run in a span.
	Tracer trace.Tracer
}

// Engine holds the pre-resolved execution state for one graph and plan:
// every node's kernel, its input bindings and its output slots.
type Engine struct {
	g    *graph.Graph
	plan *schedule.Plan
	opts Options

	nodes  []execNode
	values []float64
}

type execNode struct {
	ref     graph.NodeRef
	kind    string
	kernel  registry.Kernel
	inputs  []inputBinding
	outputs []outputBinding
}

// inputBinding is one declared input port and the value slots summed into
// it, in link insertion order.
type inputBinding struct {
	port    string
	sources []int
}

// outputBinding is one declared output port and the slot it publishes to.
type outputBinding struct {
	port string
	slot int
}

type slotKey struct {
	ref  graph.NodeRef
	port string
}

// New pre-resolves g against the registry: a kernel per node, a slab slot
// per declared output port, and per-input source lists from the in-links.
// Links touching ports the registry does not declare fail here, which
// covers graphs built without a registry attached.
func New(g *graph.Graph, plan *schedule.Plan, reg *registry.Registry, opts Options) (*Engine, error) {
	if reg == nil {
		return nil, fmt.Errorf("engine needs a registry to resolve kernels")
	}
	if plan.NodeCount() != g.NodeCount() {
		return nil, fmt.Errorf("plan covers %d nodes but graph has %d", plan.NodeCount(), g.NodeCount())
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Timesteps <= 0 {
		opts.Timesteps = 1
	}

	e := &Engine{
		g:     g,
		plan:  plan,
		opts:  opts,
		nodes: make([]execNode, g.NodeCount()),
	}

	// First pass: kernels and output slots.
	slots := make(map[slotKey]int)
	for _, n := range g.Nodes() {
		desc, err := reg.Describe(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nodeLabel(n), err)
		}
		kernel, err := reg.NewKernel(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nodeLabel(n), err)
		}

		en := execNode{ref: n.Ref, kind: n.Kind, kernel: kernel}
		for _, port := range desc.Outputs {
			slot := len(e.values)
			e.values = append(e.values, 0)
			slots[slotKey{ref: n.Ref, port: port}] = slot
			en.outputs = append(en.outputs, outputBinding{port: port, slot: slot})
		}
		e.nodes[n.Ref] = en
	}

	// Second pass: input bindings from the in-links.
	for _, n := range g.Nodes() {
		desc, _ := reg.Describe(n.Kind)
		declared := make(map[string]int, len(desc.Inputs))
		bindings := make([]inputBinding, len(desc.Inputs))
		for i, port := range desc.Inputs {
			declared[port] = i
			bindings[i] = inputBinding{port: port}
		}

		for _, l := range g.InLinks(n.Ref) {
			i, ok := declared[l.ToPort]
			if !ok {
				return nil, fmt.Errorf("node %s: %w", nodeLabel(n),
					&graph.InvalidPortError{Kind: n.Kind, Port: l.ToPort, Direction: graph.PortInput})
			}
			slot, ok := slots[slotKey{ref: l.From, port: l.FromPort}]
			if !ok {
				from := g.Node(l.From)
				return nil, fmt.Errorf("node %s: %w", nodeLabel(from),
					&graph.InvalidPortError{Kind: from.Kind, Port: l.FromPort, Direction: graph.PortOutput})
			}
			bindings[i].sources = append(bindings[i].sources, slot)
		}
		e.nodes[n.Ref].inputs = bindings
	}

	return e, nil
}

// slotOf resolves the slab slot publishing (ref, output port), for probe
// resolution.
func (e *Engine) slotOf(ref graph.NodeRef, port string) (int, bool) {
	for _, out := range e.nodes[ref].outputs {
		if out.port == port {
			return out.slot, true
		}
	}
	return 0, false
}

func nodeLabel(n graph.Node) string {
	return fmt.Sprintf("(model %q, tags %s)", n.Kind, n.Tags)
}

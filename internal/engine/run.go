package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ConnectedSystems/openwater/internal/ctxlog"
	"github.com/ConnectedSystems/openwater/internal/graph"
)

// Run executes the plan for the configured number of timesteps and returns
// the recorded probe series. The first kernel failure aborts the run after
// its stage drains; stage ordering guarantees no dependent of the failed
// node has started. Cancellation is honored between stages and steps.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("run_id", runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	if e.opts.Tracer != nil {
		var span trace.Span
		ctx, span = e.opts.Tracer.Start(ctx, "engine.run", trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.Int("run.timesteps", e.opts.Timesteps),
			attribute.Int("run.nodes", len(e.nodes)),
			attribute.Int("run.stages", e.plan.StageCount()),
		))
		defer span.End()
	}

	probes, err := e.resolveProbes()
	if err != nil {
		return nil, err
	}

	results := &Results{
		RunID:     runID,
		Steps:     e.opts.Timesteps,
		NodeCount: len(e.nodes),
		Series:    make(map[string][]float64, len(probes)),
	}
	for _, p := range probes {
		results.Series[p.name] = make([]float64, e.opts.Timesteps)
	}

	logger.Info("🚀 Run starting.",
		"timesteps", e.opts.Timesteps,
		"node_count", len(e.nodes),
		"stage_count", e.plan.StageCount(),
		"workers", e.opts.Workers)

	for step := 0; step < e.opts.Timesteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run canceled at step %d: %w", step, err)
		}
		for si, stage := range e.plan.Stages {
			if err := e.runStage(ctx, step, stage.Nodes); err != nil {
				return nil, fmt.Errorf("step %d stage %d: %w", step, si, err)
			}
		}
		for _, p := range probes {
			results.Series[p.name][step] = e.values[p.slot]
		}
		if e.opts.OnStep != nil {
			e.opts.OnStep(step)
		}
	}

	logger.Info("🏁 Run complete.", "timesteps", e.opts.Timesteps)
	return results, nil
}

// runStage evaluates every node of one stage with a bounded worker pool.
// Each worker records its failures into its own slice slot, so the pool
// needs no locks; the first error in stage order wins.
func (e *Engine) runStage(ctx context.Context, step int, nodes []graph.NodeRef) error {
	workers := e.opts.Workers
	if len(nodes) < workers {
		workers = len(nodes)
	}

	jobs := make(chan int, len(nodes))
	errs := make([]error, len(nodes))
	var wg sync.WaitGroup
	wg.Add(len(nodes))

	for w := 0; w < workers; w++ {
		go func() {
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					errs[idx] = err
				} else {
					errs[idx] = e.evalNode(step, &e.nodes[nodes[idx]])
				}
				wg.Done()
			}
		}()
	}

	for idx := range nodes {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	for idx, err := range errs {
		if err != nil {
			n := e.g.Node(nodes[idx])
			return fmt.Errorf("node %s: %w", nodeLabel(n), err)
		}
	}
	return nil
}

// evalNode gathers one node's inputs, steps its kernel and publishes the
// declared outputs.
func (e *Engine) evalNode(step int, en *execNode) error {
	inputs := make(map[string]float64, len(en.inputs))
	node := e.g.Node(en.ref)
	for _, in := range en.inputs {
		sum := 0.0
		for _, slot := range in.sources {
			sum += e.values[slot]
		}
		if e.opts.Forcing != nil {
			if v, ok := e.opts.Forcing.Value(step, node, in.port); ok {
				sum += v
			}
		}
		inputs[in.port] = sum
	}

	outputs, err := en.kernel.Step(inputs)
	if err != nil {
		return err
	}

	for _, out := range en.outputs {
		v, ok := outputs[out.port]
		if !ok {
			return fmt.Errorf("kernel of model %q returned no value for output %q", en.kind, out.port)
		}
		e.values[out.slot] = v
	}
	return nil
}

type resolvedProbe struct {
	name string
	slot int
}

func (e *Engine) resolveProbes() ([]resolvedProbe, error) {
	resolved := make([]resolvedProbe, 0, len(e.opts.Probes))
	names := make(map[string]struct{}, len(e.opts.Probes))
	for _, p := range e.opts.Probes {
		if _, dup := names[p.Name]; dup {
			return nil, fmt.Errorf("probe %q declared twice", p.Name)
		}
		names[p.Name] = struct{}{}
		ref, err := e.g.MatchOne(p.Predicates)
		if err != nil {
			return nil, fmt.Errorf("resolve probe %q: %w", p.Name, err)
		}
		slot, ok := e.slotOf(ref, p.Port)
		if !ok {
			n := e.g.Node(ref)
			return nil, fmt.Errorf("resolve probe %q: %w", p.Name,
				&graph.InvalidPortError{Kind: n.Kind, Port: p.Port, Direction: graph.PortOutput})
		}
		resolved = append(resolved, resolvedProbe{name: p.Name, slot: slot})
	}
	return resolved, nil
}

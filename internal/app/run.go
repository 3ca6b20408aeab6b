package app

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/gosuri/uiprogress"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ConnectedSystems/openwater/internal/builder"
	"github.com/ConnectedSystems/openwater/internal/ctxlog"
	"github.com/ConnectedSystems/openwater/internal/engine"
	"github.com/ConnectedSystems/openwater/internal/graph"
	"github.com/ConnectedSystems/openwater/internal/schedule"
)

// Run executes the main application logic: assemble the scenario into a
// graph and plan, report the plan, and unless plan-only mode is on, run the
// simulation and report the recorded series.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.StatusPort > 0 {
		a.startStatusServer(a.config.StatusPort)
		defer a.closeStatusServer()
	}

	tracing, err := a.setupTracing()
	if err != nil {
		return err
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			a.logger.Error("Trace exporter shutdown failed", "error", err)
		}
	}()
	tracer := tracing.Tracer()

	a.logger.Debug("Assembling scenario into graph and plan...")
	buildCtx, buildSpan := tracer.Start(ctx, "scenario.build")
	res, err := builder.Build(buildCtx, a.model, a.registry)
	if err != nil {
		buildSpan.End()
		return fmt.Errorf("failed to assemble scenario: %w", err)
	}
	buildSpan.SetAttributes(
		attribute.Int("graph.nodes", res.Graph.NodeCount()),
		attribute.Int("graph.links", res.Graph.LinkCount()),
		attribute.Int("plan.stages", res.Plan.StageCount()),
	)
	buildSpan.End()

	a.metrics.SetGraphShape(res.Graph.NodeCount(), res.Graph.LinkCount())
	a.metrics.SetPlanShape(res.Plan.StageCount(), res.Plan.MaxWidth())

	writePlanSummary(a.outW, res.Graph, res.Plan)

	if a.config.PlanOnly {
		a.logger.Info("Plan-only mode, skipping execution.")
		return nil
	}
	if res.Plan.NodeCount() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
		return nil
	}

	timesteps := 0
	if a.model.Run != nil {
		timesteps = a.model.Run.Timesteps
	}
	if a.config.Timesteps > 0 {
		timesteps = a.config.Timesteps
	}
	if timesteps <= 0 {
		a.logger.Warn("Scenario has no run block and no timestep override, execution not required.")
		return nil
	}

	if a.config.Progress {
		uiprogress.Start()
		defer uiprogress.Stop()
	}

	opts := engine.Options{
		Workers:   a.config.Workers,
		Timesteps: timesteps,
		Forcing:   res.Forcing,
		Probes:    res.Probes,
		Tracer:    tracer,
	}
	opts.OnStep = a.stepObserver(timesteps)

	eng, err := engine.New(res.Graph, res.Plan, a.registry, opts)
	if err != nil {
		return fmt.Errorf("failed to prepare engine: %w", err)
	}

	results, err := eng.Run(ctx)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	writeResults(a.outW, results)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// stepObserver builds the engine step callback: metrics always, plus a
// progress bar when enabled.
func (a *App) stepObserver(timesteps int) func(int) {
	metrics := a.metrics
	last := time.Now()

	if !a.config.Progress {
		return func(int) {
			metrics.ObserveTimestep(time.Since(last))
			last = time.Now()
		}
	}

	bar := uiprogress.AddBar(timesteps).AppendCompleted().PrependElapsed()
	return func(int) {
		metrics.ObserveTimestep(time.Since(last))
		last = time.Now()
		bar.Incr()
	}
}

// writePlanSummary prints the shape of the assembled plan: one line per
// stage with its per-kind batch sizes.
func writePlanSummary(w io.Writer, g *graph.Graph, plan *schedule.Plan) {
	fmt.Fprintf(w, "Execution plan: %d nodes, %d links, %d stages (max %d parallel).\n",
		g.NodeCount(), g.LinkCount(), plan.StageCount(), plan.MaxWidth())
	for i, stage := range plan.Stages {
		fmt.Fprintf(w, "  stage %d:", i)
		for _, batch := range stage.Batches(g) {
			fmt.Fprintf(w, " %s x%d", batch.Kind, len(batch.Nodes))
		}
		fmt.Fprintln(w)
	}
}

// writeResults prints one line per recorded series: its final value and the
// mean across the run.
func writeResults(w io.Writer, results *engine.Results) {
	if len(results.Series) == 0 {
		return
	}

	names := make([]string, 0, len(results.Series))
	for name := range results.Series {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "Recorded series (%d timesteps):\n", results.Steps)
	for _, name := range names {
		series := results.Series[name]
		sum := 0.0
		for _, v := range series {
			sum += v
		}
		mean := sum / float64(len(series))
		fmt.Fprintf(w, "  %s: last=%.6g mean=%.6g\n", name, series[len(series)-1], mean)
	}
}

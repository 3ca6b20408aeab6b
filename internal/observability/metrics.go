package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunCollector exposes the shape and progress of a simulation run as
// Prometheus metrics.
type RunCollector struct {
	gatherer prometheus.Gatherer

	GraphNodes       prometheus.Gauge
	GraphLinks       prometheus.Gauge
	PlanStages       prometheus.Gauge
	PlanMaxParallel  prometheus.Gauge
	TimestepsTotal   prometheus.Counter
	TimestepDuration prometheus.Histogram
}

// NewRunCollector registers run metrics against the provided registerer,
// defaulting to the global Prometheus registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	nodes, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_graph_nodes",
		Help: "Number of nodes in the assembled graph.",
	}), "simulation_graph_nodes")
	if err != nil {
		return nil, err
	}
	links, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_graph_links",
		Help: "Number of links in the assembled graph.",
	}), "simulation_graph_links")
	if err != nil {
		return nil, err
	}
	stages, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_plan_stages",
		Help: "Number of stages in the execution plan.",
	}), "simulation_plan_stages")
	if err != nil {
		return nil, err
	}
	maxParallel, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulation_plan_max_parallelism",
		Help: "Size of the widest stage in the execution plan.",
	}), "simulation_plan_max_parallelism")
	if err != nil {
		return nil, err
	}

	timesteps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulation_timesteps_total",
		Help: "Cumulative number of completed timesteps.",
	}), "simulation_timesteps_total")
	if err != nil {
		return nil, err
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "simulation_timestep_duration_seconds",
		Help:    "Wall-clock duration of each simulated timestep.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	duration, err = registerHistogram(reg, duration, "simulation_timestep_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &RunCollector{
		gatherer:         gatherer,
		GraphNodes:       nodes,
		GraphLinks:       links,
		PlanStages:       stages,
		PlanMaxParallel:  maxParallel,
		TimestepsTotal:   timesteps,
		TimestepDuration: duration,
	}, nil
}

// SetGraphShape records the node and link counts of the assembled graph.
func (c *RunCollector) SetGraphShape(nodes, links int) {
	if c == nil {
		return
	}
	if c.GraphNodes != nil {
		c.GraphNodes.Set(float64(nodes))
	}
	if c.GraphLinks != nil {
		c.GraphLinks.Set(float64(links))
	}
}

// SetPlanShape records the stage count and widest stage of the plan.
func (c *RunCollector) SetPlanShape(stages, maxParallel int) {
	if c == nil {
		return
	}
	if c.PlanStages != nil {
		c.PlanStages.Set(float64(stages))
	}
	if c.PlanMaxParallel != nil {
		c.PlanMaxParallel.Set(float64(maxParallel))
	}
}

// ObserveTimestep records one completed timestep and its duration.
func (c *RunCollector) ObserveTimestep(d time.Duration) {
	if c == nil {
		return
	}
	if c.TimestepsTotal != nil {
		c.TimestepsTotal.Inc()
	}
	if c.TimestepDuration != nil {
		c.TimestepDuration.Observe(d.Seconds())
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RunCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

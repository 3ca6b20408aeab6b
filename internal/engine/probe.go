package engine

import "github.com/ConnectedSystems/openwater/internal/graph"

// Probe records one output port of one node as a named timeseries. The
// predicates must resolve to exactly one node, the same contract as
// cross-unit link resolution.
type Probe struct {
	Name       string
	Predicates graph.Tags
	Port       string
}

// Results carries what a run produced: the per-probe series, keyed by probe
// name, plus the run's identity and shape.
type Results struct {
	RunID     string
	Steps     int
	NodeCount int
	Series    map[string][]float64
}

package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConnectedSystems/openwater/internal/graph"
	"github.com/ConnectedSystems/openwater/internal/registry"
	"github.com/ConnectedSystems/openwater/internal/schedule"
)

// emitKernel publishes a fixed value every step.
type emitKernel struct {
	value float64
}

func (k *emitKernel) Step(map[string]float64) (map[string]float64, error) {
	return map[string]float64{"outflow": k.value}, nil
}

// gaugeKernel passes inflow through and keeps every value it saw.
type gaugeKernel struct {
	seen []float64
}

func (k *gaugeKernel) Step(inputs map[string]float64) (map[string]float64, error) {
	k.seen = append(k.seen, inputs["inflow"])
	return map[string]float64{"outflow": inputs["inflow"]}, nil
}

// storeKernel accumulates rainfall across steps.
type storeKernel struct {
	store float64
}

func (k *storeKernel) Step(inputs map[string]float64) (map[string]float64, error) {
	k.store += inputs["rainfall"]
	return map[string]float64{"runoff": k.store}, nil
}

type failKernel struct{}

func (failKernel) Step(map[string]float64) (map[string]float64, error) {
	return nil, errors.New("mass balance violated")
}

func testRegistry(emitted float64) (*registry.Registry, *gaugeKernel) {
	gauge := &gaugeKernel{}
	r := registry.New()
	r.Register(registry.Definition{
		Kind:        "Source",
		Description: registry.Description{Outputs: []string{"outflow"}},
		New:         func() registry.Kernel { return &emitKernel{value: emitted} },
	})
	r.Register(registry.Definition{
		Kind:        "Gauge",
		Description: registry.Description{Inputs: []string{"inflow"}, Outputs: []string{"outflow"}},
		New:         func() registry.Kernel { return gauge },
	})
	r.Register(registry.Definition{
		Kind:        "Store",
		Description: registry.Description{Inputs: []string{"rainfall"}, Outputs: []string{"runoff"}},
		New:         func() registry.Kernel { return &storeKernel{} },
	})
	return r, gauge
}

func buildPlan(t require.TestingT, g *graph.Graph) *schedule.Plan {
	plan, err := schedule.Build(context.Background(), g)
	require.NoError(t, err)
	return plan
}

func TestRun_SumsConfluentInputs(t *testing.T) {
	// Two sources emit 2.5 each into one gauge inlet; the gauge must see 5.
	reg, gauge := testRegistry(2.5)
	g := graph.New(reg)
	a, err := g.AddNode("Source", graph.Tags{"catchment": "a"})
	require.NoError(t, err)
	b, err := g.AddNode("Source", graph.Tags{"catchment": "b"})
	require.NoError(t, err)
	sink, err := g.AddNode("Gauge", graph.Tags{"catchment": "c"})
	require.NoError(t, err)
	require.NoError(t, g.AddLink(a, "outflow", sink, "inflow"))
	require.NoError(t, g.AddLink(b, "outflow", sink, "inflow"))

	e, err := New(g, buildPlan(t, g), reg, Options{Timesteps: 1})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{5.0}, gauge.seen)
}

func TestRun_ValuesFlowThroughStagesWithinAStep(t *testing.T) {
	// source -> gauge -> gauge: the emitted value must traverse the whole
	// chain inside a single timestep.
	reg, _ := testRegistry(7)
	g := graph.New(reg)
	src, _ := g.AddNode("Source", graph.Tags{"catchment": "up"})
	mid, _ := g.AddNode("Gauge", graph.Tags{"catchment": "mid"})
	down, _ := g.AddNode("Gauge", graph.Tags{"catchment": "down"})
	require.NoError(t, g.AddLink(src, "outflow", mid, "inflow"))
	require.NoError(t, g.AddLink(mid, "outflow", down, "inflow"))

	e, err := New(g, buildPlan(t, g), reg, Options{
		Timesteps: 1,
		Probes: []Probe{{
			Name:       "outlet",
			Predicates: graph.Tags{"catchment": "down"},
			Port:       "outflow",
		}},
	})
	require.NoError(t, err)

	results, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{7.0}, results.Series["outlet"])
	assert.NotEmpty(t, results.RunID)
	assert.Equal(t, 3, results.NodeCount)
}

func TestRun_KernelStatePersistsAcrossSteps(t *testing.T) {
	reg, _ := testRegistry(0)
	g := graph.New(reg)
	_, err := g.AddNode("Store", graph.Tags{"catchment": "a"})
	require.NoError(t, err)

	e, err := New(g, buildPlan(t, g), reg, Options{
		Timesteps: 3,
		Forcing:   ConstantForcing{"rainfall": 1.0},
		Probes: []Probe{{
			Name:       "storage",
			Predicates: graph.Tags{"catchment": "a"},
			Port:       "runoff",
		}},
	})
	require.NoError(t, err)

	results, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, results.Series["storage"])
}

func TestRun_ForcingAddsToLinkedInputs(t *testing.T) {
	// A linked inlet with a forcing on the same port receives both
	// contributions.
	reg, gauge := testRegistry(2)
	g := graph.New(reg)
	src, _ := g.AddNode("Source", graph.Tags{"catchment": "up"})
	sink, _ := g.AddNode("Gauge", graph.Tags{"catchment": "down"})
	require.NoError(t, g.AddLink(src, "outflow", sink, "inflow"))

	e, err := New(g, buildPlan(t, g), reg, Options{
		Timesteps: 1,
		Forcing:   ConstantForcing{"inflow": 0.5},
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5}, gauge.seen)
}

func TestRun_StepwiseForcing(t *testing.T) {
	reg, gauge := testRegistry(0)
	g := graph.New(reg)
	_, err := g.AddNode("Gauge", graph.Tags{"catchment": "a"})
	require.NoError(t, err)

	forcing := ForcingFunc(func(step int, _ graph.Node, port string) (float64, bool) {
		if port != "inflow" {
			return 0, false
		}
		return float64(step * 10), true
	})

	e, err := New(g, buildPlan(t, g), reg, Options{Timesteps: 3, Forcing: forcing})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 10, 20}, gauge.seen)
}

func TestRun_KernelFailureAbortsBeforeDependents(t *testing.T) {
	gauge := &gaugeKernel{}
	reg := registry.New()
	reg.Register(registry.Definition{
		Kind:        "Broken",
		Description: registry.Description{Outputs: []string{"outflow"}},
		New:         func() registry.Kernel { return failKernel{} },
	})
	reg.Register(registry.Definition{
		Kind:        "Gauge",
		Description: registry.Description{Inputs: []string{"inflow"}, Outputs: []string{"outflow"}},
		New:         func() registry.Kernel { return gauge },
	})

	g := graph.New(reg)
	bad, _ := g.AddNode("Broken", graph.Tags{"catchment": "up"})
	down, _ := g.AddNode("Gauge", graph.Tags{"catchment": "down"})
	require.NoError(t, g.AddLink(bad, "outflow", down, "inflow"))

	e, err := New(g, buildPlan(t, g), reg, Options{Timesteps: 5})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.ErrorContains(t, err, "mass balance violated")
	assert.ErrorContains(t, err, `model "Broken"`)
	assert.Empty(t, gauge.seen, "dependent must never have run")
}

func TestRun_Cancellation(t *testing.T) {
	reg, _ := testRegistry(1)
	g := graph.New(reg)
	_, err := g.AddNode("Source", graph.Tags{"catchment": "a"})
	require.NoError(t, err)

	e, err := New(g, buildPlan(t, g), reg, Options{Timesteps: 1000})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_OnStepCalledPerTimestep(t *testing.T) {
	reg, _ := testRegistry(1)
	g := graph.New(reg)
	_, err := g.AddNode("Source", graph.Tags{"catchment": "a"})
	require.NoError(t, err)

	var steps []int
	e, err := New(g, buildPlan(t, g), reg, Options{
		Timesteps: 3,
		OnStep:    func(step int) { steps = append(steps, step) },
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, steps)
}

func TestNew_Validation(t *testing.T) {
	reg, _ := testRegistry(1)

	t.Run("registry required", func(t *testing.T) {
		g := graph.New(nil)
		_, err := New(g, buildPlan(t, g), nil, Options{})
		assert.ErrorContains(t, err, "needs a registry")
	})

	t.Run("plan must match graph", func(t *testing.T) {
		g := graph.New(reg)
		_, err := g.AddNode("Source", graph.Tags{"catchment": "a"})
		require.NoError(t, err)
		empty := buildPlan(t, graph.New(nil))

		_, err = New(g, empty, reg, Options{})
		assert.ErrorContains(t, err, "plan covers 0 nodes")
	})

	t.Run("links must touch declared ports", func(t *testing.T) {
		// Built without a registry, so the bogus port survives until
		// engine resolution.
		g := graph.New(nil)
		a, _ := g.AddNode("Source", graph.Tags{"catchment": "a"})
		b, _ := g.AddNode("Gauge", graph.Tags{"catchment": "b"})
		require.NoError(t, g.AddLink(a, "outflow", b, "bogus"))

		_, err := New(g, buildPlan(t, g), reg, Options{})
		var invalid *graph.InvalidPortError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "bogus", invalid.Port)
	})

	t.Run("unknown kind in graph", func(t *testing.T) {
		g := graph.New(nil)
		_, err := g.AddNode("Mystery", nil)
		require.NoError(t, err)

		_, err = New(g, buildPlan(t, g), reg, Options{})
		var unknown *registry.UnknownModelKindError
		assert.ErrorAs(t, err, &unknown)
	})
}

func TestRun_ProbeErrors(t *testing.T) {
	reg, _ := testRegistry(1)
	g := graph.New(reg)
	_, err := g.AddNode("Source", graph.Tags{"catchment": "a"})
	require.NoError(t, err)

	t.Run("unmatched predicates", func(t *testing.T) {
		e, err := New(g, buildPlan(t, g), reg, Options{
			Probes: []Probe{{Name: "x", Predicates: graph.Tags{"catchment": "nope"}, Port: "outflow"}},
		})
		require.NoError(t, err)

		_, err = e.Run(context.Background())
		var unknown *graph.UnknownNodeError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("undeclared port", func(t *testing.T) {
		e, err := New(g, buildPlan(t, g), reg, Options{
			Probes: []Probe{{Name: "x", Predicates: graph.Tags{"catchment": "a"}, Port: "bogus"}},
		})
		require.NoError(t, err)

		_, err = e.Run(context.Background())
		var invalid *graph.InvalidPortError
		assert.ErrorAs(t, err, &invalid)
	})

	t.Run("duplicate probe name", func(t *testing.T) {
		probe := Probe{Name: "x", Predicates: graph.Tags{"catchment": "a"}, Port: "outflow"}
		e, err := New(g, buildPlan(t, g), reg, Options{Probes: []Probe{probe, probe}})
		require.NoError(t, err)

		_, err = e.Run(context.Background())
		assert.ErrorContains(t, err, `probe "x" declared twice`)
	})
}

func TestRun_MissingKernelOutputFails(t *testing.T) {
	reg := registry.New()
	reg.Register(registry.Definition{
		Kind:        "Hollow",
		Description: registry.Description{Outputs: []string{"outflow"}},
		New: func() registry.Kernel {
			return kernelFunc(func(map[string]float64) (map[string]float64, error) {
				return map[string]float64{}, nil
			})
		},
	})

	g := graph.New(reg)
	_, err := g.AddNode("Hollow", graph.Tags{"catchment": "a"})
	require.NoError(t, err)

	e, err := New(g, buildPlan(t, g), reg, Options{})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	assert.ErrorContains(t, err, `no value for output "outflow"`)
}

type kernelFunc func(map[string]float64) (map[string]float64, error)

func (f kernelFunc) Step(inputs map[string]float64) (map[string]float64, error) {
	return f(inputs)
}

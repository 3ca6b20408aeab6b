package app_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConnectedSystems/openwater/internal/app"
	"github.com/ConnectedSystems/openwater/internal/config"
	"github.com/ConnectedSystems/openwater/internal/registry"
)

// stubLoader hands the app a pre-built model, bypassing the filesystem.
type stubLoader struct {
	model *config.Model
	err   error
}

func (l *stubLoader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	return l.model, l.err
}

func testConfig(t *testing.T, mutate func(*app.Config)) *app.Config {
	t.Helper()
	cfg := app.Config{
		ScenarioPath: "stub",
		LogLevel:     "debug",
		LogFormat:    "text",
		Workers:      2,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	built, err := app.NewConfig(cfg)
	require.NoError(t, err)
	return built
}

func catchmentModel() *config.Model {
	return &config.Model{
		Templates: map[string]*config.Template{
			"cell": {
				Name: "cell",
				Nodes: []*config.Node{
					{Name: "rr", Model: "Simhyd", Tags: map[string]string{"process": "RR"}},
					{Name: "scale", Model: "DepthToRate", Tags: map[string]string{"process": "ArealScale"}},
					{Name: "route", Model: "Muskingum", Tags: map[string]string{"process": "FlowRouting"}},
				},
				Links: []*config.Link{
					{From: "rr", Output: "runoff", To: "scale", Input: "input"},
					{From: "scale", Output: "outflow", To: "route", Input: "lateral"},
				},
			},
		},
		Domain: &config.Domain{
			Rows:           1,
			Cols:           2,
			FlowDirections: []int{1, 0},
			Template:       "cell",
			Connections: []*config.Connection{
				{OutletModel: "Muskingum", OutletPort: "outflow", InletModel: "Muskingum", InletPort: "inflow"},
			},
		},
		Run: &config.Run{
			Timesteps: 5,
			Forcings: []*config.Forcing{
				{Port: "rainfall", Value: 15, Model: "Simhyd"},
			},
			Records: []*config.Record{
				{Name: "outlet", Model: "Muskingum", Tags: map[string]string{"col": "1"}, Port: "outflow"},
			},
		},
	}
}

func TestNewConfig_RequiresScenarioPath(t *testing.T) {
	_, err := app.NewConfig(app.Config{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ScenarioPath")
}

func TestNew_LoaderFailurePropagates(t *testing.T) {
	loader := &stubLoader{err: errors.New("disk on fire")}

	_, err := app.New(&bytes.Buffer{}, testConfig(t, nil), loader)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load scenario")
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestNew_RegistryValidationFailurePropagates(t *testing.T) {
	_, err := app.New(&bytes.Buffer{}, testConfig(t, nil), &stubLoader{model: catchmentModel()}, brokenModule{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no kernel factory")
}

type brokenModule struct{}

func (brokenModule) Register(r *registry.Registry) {
	r.Register(registry.Definition{
		Kind:        "Broken",
		Description: registry.Description{Outputs: []string{"out"}},
	})
}

func TestRun_FullScenario(t *testing.T) {
	out := &bytes.Buffer{}
	a, err := app.New(out, testConfig(t, nil), &stubLoader{model: catchmentModel()})
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "Execution plan: 6 nodes, 5 links, 4 stages")
	assert.Contains(t, out.String(), "Recorded series (5 timesteps):")
	assert.Contains(t, out.String(), "outlet: last=")
}

func TestRun_PlanOnlySkipsExecution(t *testing.T) {
	out := &bytes.Buffer{}
	a, err := app.New(out, testConfig(t, func(c *app.Config) { c.PlanOnly = true }), &stubLoader{model: catchmentModel()})
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "Execution plan:")
	assert.Contains(t, out.String(), "Plan-only mode")
	assert.NotContains(t, out.String(), "Run complete.")
}

func TestRun_TimestepFlagOverridesScenario(t *testing.T) {
	out := &bytes.Buffer{}
	a, err := app.New(out, testConfig(t, func(c *app.Config) { c.Timesteps = 2 }), &stubLoader{model: catchmentModel()})
	require.NoError(t, err)

	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, out.String(), "Recorded series (2 timesteps):")
}

func TestRun_CancelledContext(t *testing.T) {
	out := &bytes.Buffer{}
	a, err := app.New(out, testConfig(t, nil), &stubLoader{model: catchmentModel()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = a.Run(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
}

package integrationtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConnectedSystems/openwater/internal/graph"
	"github.com/ConnectedSystems/openwater/internal/registry"
	"github.com/ConnectedSystems/openwater/internal/schedule"
	"github.com/ConnectedSystems/openwater/internal/testutil"
)

func TestScenario_MutualDrainageReportsCycle(t *testing.T) {
	res := testutil.RunScenarioTest(t, map[string]string{
		"scenario.hcl": catchmentTemplate + `
domain {
  rows            = 1
  cols            = 2
  flow_directions = [1, 5]
  template        = "cell"

  connection {
    outlet_model = "Muskingum"
    outlet_port  = "outflow"
    inlet_model  = "Muskingum"
    inlet_port   = "inflow"
  }
}
`,
	})

	require.Error(t, res.Err)
	var cyclic *schedule.CyclicGraphError
	require.ErrorAs(t, res.Err, &cyclic)
	assert.Contains(t, res.Err.Error(), "dependency cycle")
}

func TestScenario_AmbiguousConnectionEndpoint(t *testing.T) {
	res := testutil.RunScenarioTest(t, map[string]string{
		"scenario.hcl": constituentTemplate + `
domain {
  rows            = 1
  cols            = 2
  flow_directions = [1, 0]
  template        = "semi_lumped"

  connection {
    outlet_model = "DepthToRate"
    outlet_port  = "outflow"
    inlet_model  = "Muskingum"
    inlet_port   = "inflow"
  }
}
`,
	})

	require.Error(t, res.Err)
	var ambiguous *graph.AmbiguousNodeError
	require.ErrorAs(t, res.Err, &ambiguous)
	assert.Len(t, ambiguous.Refs, 3, "each cell has three areal scalers")
}

func TestScenario_UnknownModelKind(t *testing.T) {
	res := testutil.RunScenarioTest(t, map[string]string{
		"scenario.hcl": `
template "cell" {
  node "runoff" {
    model = "Gr4j"
  }
}

domain {
  rows            = 1
  cols            = 1
  flow_directions = [0]
  template        = "cell"
}
`,
	})

	require.Error(t, res.Err)
	var unknown *registry.UnknownModelKindError
	require.ErrorAs(t, res.Err, &unknown)
	assert.Equal(t, "Gr4j", unknown.Kind)
}

func TestScenario_GridShapeMismatchFailsAtLoad(t *testing.T) {
	res := testutil.RunScenarioTest(t, map[string]string{
		"scenario.hcl": catchmentTemplate + `
domain {
  rows            = 2
  cols            = 2
  flow_directions = [1, 7]
  template        = "cell"
}
`,
	})

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "flow directions for a 2x2 grid")
	assert.Nil(t, res.App, "the app never finishes construction")
}

func TestScenario_RecordMatchingNothingFailsTheRun(t *testing.T) {
	res := testutil.RunScenarioTest(t, map[string]string{
		"scenario.hcl": catchmentTemplate + `
domain {
  rows            = 1
  cols            = 1
  flow_directions = [0]
  template        = "cell"
}

run {
  timesteps = 2

  record "ghost" {
    model = "Muskingum"
    tags  = { row = 5, col = 5 }
    port  = "outflow"
  }
}
`,
	})

	require.Error(t, res.Err)
	var missing *graph.UnknownNodeError
	require.ErrorAs(t, res.Err, &missing)
}

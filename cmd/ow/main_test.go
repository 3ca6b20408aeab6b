package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// The "-h" (help) flag should cause cli.Parse to return shouldExit=true.
	out := &bytes.Buffer{}

	err := run(out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}

	err := run(out, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_BrokenScenarioFailsCleanly(t *testing.T) {
	t.Parallel()

	invalidHCL := `
template "cell" {
  node "runoff" {
// Missing closing braces here
`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	err := run(&bytes.Buffer{}, []string{filePath})

	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse scenario file")
}

func TestRun_PlanOnlyScenario(t *testing.T) {
	t.Parallel()

	scenario := `
template "cell" {
  node "runoff" {
    model = "Simhyd"
  }
}

domain {
  rows            = 1
  cols            = 1
  flow_directions = [0]
  template        = "cell"
}
`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(scenario), 0o600))

	out := &bytes.Buffer{}
	err := run(out, []string{"-plan-only", "-log-level", "error", filePath})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Execution plan: 1 nodes, 0 links, 1 stages")
}

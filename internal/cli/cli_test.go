package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_AllFlags(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, exit, err := Parse([]string{
		"-scenario", "catchment.hcl",
		"-status-port", "8080",
		"-log-format", "text",
		"-log-level", "debug",
		"-workers", "8",
		"-timesteps", "30",
		"-plan-only",
		"-progress",
		"-trace-exporter", "stdout",
	}, out)

	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "catchment.hcl", cfg.ScenarioPath)
	assert.Equal(t, 8080, cfg.StatusPort)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 30, cfg.Timesteps)
	assert.True(t, cfg.PlanOnly)
	assert.True(t, cfg.Progress)
	assert.Equal(t, "stdout", cfg.TraceExporter)
}

func TestParse_PositionalScenarioPath(t *testing.T) {
	cfg, exit, err := Parse([]string{"scenarios/"}, &bytes.Buffer{})

	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "scenarios/", cfg.ScenarioPath)
}

func TestParse_ShorthandFlag(t *testing.T) {
	cfg, _, err := Parse([]string{"-s", "a.hcl"}, &bytes.Buffer{})

	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.ScenarioPath)
}

func TestParse_NoPathPrintsUsageAndExits(t *testing.T) {
	out := &bytes.Buffer{}

	cfg, exit, err := Parse([]string{}, out)

	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_HelpExitsCleanly(t *testing.T) {
	out := &bytes.Buffer{}

	_, exit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, exit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_InvalidValues(t *testing.T) {
	testCases := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"bad log format", []string{"-log-format", "yaml", "a.hcl"}, "invalid log-format"},
		{"bad log level", []string{"-log-level", "verbose", "a.hcl"}, "invalid log-level"},
		{"bad trace exporter", []string{"-trace-exporter", "jaeger", "a.hcl"}, "invalid trace-exporter"},
		{"unknown flag", []string{"--frobnicate"}, "flag provided but not defined"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

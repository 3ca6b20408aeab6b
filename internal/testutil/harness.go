// Package testutil provides the shared harness for scenario-level tests:
// write HCL fragments to disk, boot the app against them and run it to
// completion.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ConnectedSystems/openwater/internal/app"
	"github.com/ConnectedSystems/openwater/internal/hcl"
	"github.com/ConnectedSystems/openwater/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a scenario test run.
type HarnessResult struct {
	Output string
	Err    error
	App    *app.App
}

// RunScenarioTest provides a standardized harness for running scenario
// tests using a default background context.
func RunScenarioTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunScenarioTestWithContext(context.Background(), t, files, modules...)
}

// RunScenarioTestWithContext writes the given scenario files into a
// temporary directory, boots an app against it with the HCL loader, and
// runs it to completion. Relative paths in files may include
// subdirectories.
func RunScenarioTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()

	scenarioDir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(scenarioDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	appConfig, err := app.NewConfig(app.Config{
		ScenarioPath: scenarioDir,
		LogLevel:     "debug",
		LogFormat:    "text",
		Workers:      4,
	})
	require.NoError(t, err)

	output := &SafeBuffer{}
	testApp, err := app.New(output, appConfig, hcl.NewLoader(), modules...)
	if err != nil {
		return &HarnessResult{Output: output.String(), Err: err}
	}

	runErr := testApp.Run(ctx)

	if os.Getenv("OW_TEST_LOGS") == "true" {
		t.Logf("--- Full Output for %s ---\n%s", t.Name(), output.String())
	}

	return &HarnessResult{Output: output.String(), Err: runErr, App: testApp}
}

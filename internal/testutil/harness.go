// Package testutil provides shared helpers for integration-style tests:
// a thread-safe log buffer and a harness that runs the full app over HCL
// fixtures written to a temporary directory.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/chainprobe/internal/app"
	"github.com/vk/chainprobe/internal/hcl"
	"github.com/vk/chainprobe/internal/runtime"
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

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// RunIntegrationTest provides a standardized harness for running
// integration tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...runtime.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, modules...)
}

// RunIntegrationTestWithContext writes the given HCL fixtures into a
// temporary directory, builds the app over them, and runs it. Fixture paths
// are relative: manifests go under "probes/", run files under "runs/".
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, modules ...runtime.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	probesDir := filepath.Join(tmpDir, "probes")
	runsDir := filepath.Join(tmpDir, "runs")
	require.NoError(t, os.Mkdir(probesDir, 0o755))
	require.NoError(t, os.Mkdir(runsDir, 0o755))

	for name, content := range files {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	appConfig, err := app.NewConfig(app.Config{
		RunPath:    runsDir,
		ProbesPath: probesDir,
		LogLevel:   "debug",
		LogFormat:  "text",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	harness := app.New(logBuffer, appConfig, hcl.NewLoader(), modules...)
	runErr := harness.Run(ctx)

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       harness,
	}
}

package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/chainprobe/internal/app"
	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/hcl"
	"github.com/vk/chainprobe/internal/storage"
	"github.com/vk/chainprobe/internal/storage/sqlite"
	"github.com/vk/chainprobe/internal/testutil"
	"github.com/vk/chainprobe/probes/forwarder"
)

const forwarderManifest = `
probe "forwarder" {
	description = "Installs a three-generation chain of stored contracts and dispatches through it."

	entry_point "call" {
		kind    = "session"
		returns = unit
		handler = "OnCallForwarder"
	}

	entry_point "contract_ext" {
		kind    = "contract"
		returns = unit
		handler = "ExtForwarder"
	}
}
`

func TestRun_ForwarderEndToEnd(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{
		"probes/forwarder/manifest.hcl": forwarderManifest,
		"runs/main.hcl":                 `run "forwarder" "default" {}`,
	})
	require.NoError(t, result.Err)

	// Three generations plus the terminal registration.
	reg := result.App.Engine().Registry()
	assert.Equal(t, 4, reg.Count())

	// Generation 3 still points one generation back.
	store := result.App.Engine().Store()
	key, ok, err := store.Get(context.Background(), storage.ContractOwner(3), forwarder.WellKnownKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, contract.HashKey(2), key)

	assert.Contains(t, result.LogOutput, "Probe run finished.")
}

func TestRun_NoRunBlocks(t *testing.T) {
	t.Parallel()

	result := testutil.RunIntegrationTest(t, map[string]string{
		"probes/forwarder/manifest.hcl": forwarderManifest,
	})
	require.NoError(t, result.Err)
	assert.Contains(t, result.LogOutput, "No run blocks found")
}

func TestRun_SQLiteBackend(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFixture(t, dir, "probes/forwarder/manifest.hcl", forwarderManifest)
	writeFixture(t, dir, "runs/main.hcl", `run "forwarder" "default" {}`)
	dbPath := filepath.Join(dir, "state.db")

	appConfig, err := app.NewConfig(app.Config{
		RunPath:      filepath.Join(dir, "runs"),
		ProbesPath:   filepath.Join(dir, "probes"),
		StoreBackend: app.StoreSQLite,
		StorePath:    dbPath,
		LogLevel:     "info",
		LogFormat:    "text",
	})
	require.NoError(t, err)

	harness := app.New(&testutil.SafeBuffer{}, appConfig, hcl.NewLoader())
	require.NoError(t, harness.Run(context.Background()))

	// The chain's namespace entries survive the run in the database file.
	s, err := sqlite.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	key, ok, err := s.Get(context.Background(), storage.ContractOwner(3), forwarder.WellKnownKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, contract.HashKey(2), key)
}

func writeFixture(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew_PanicsOnUnknownProbe(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		testutil.RunIntegrationTest(t, map[string]string{
			"probes/forwarder/manifest.hcl": forwarderManifest,
			"runs/main.hcl":                 `run "ghost" "default" {}`,
		})
	})
}

func TestNew_PanicsOnUnknownHandler(t *testing.T) {
	t.Parallel()

	manifest := `
	probe "broken" {
		entry_point "call" {
			kind    = "session"
			returns = unit
			handler = "NoSuchHandler"
		}
	}
	`
	assert.Panics(t, func() {
		testutil.RunIntegrationTest(t, map[string]string{
			"probes/broken/manifest.hcl": manifest,
		})
	})
}

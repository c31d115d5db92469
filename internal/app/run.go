package app

import (
	"context"
	"fmt"

	"github.com/vk/chainprobe/internal/ctxlog"
	"github.com/vk/chainprobe/internal/engine"
	"github.com/vk/chainprobe/internal/registry"
	"github.com/vk/chainprobe/internal/runtime"
	"github.com/vk/chainprobe/internal/storage"
	"github.com/vk/chainprobe/internal/storage/sqlite"

	memstore "github.com/vk/chainprobe/internal/storage/memory"
)

// Run executes every run block in the loaded model against a fresh engine.
// Any registry, storage, or dispatch failure aborts the whole run.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	store, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	reg := registry.New(store)
	var opts []engine.Option
	if a.appConfig.MaxCallDepth > 0 {
		opts = append(opts, engine.WithMaxCallDepth(a.appConfig.MaxCallDepth))
	}
	a.engine = engine.New(reg, store, a.table, opts...)

	if len(a.model.Runs) == 0 {
		a.logger.Warn("No run blocks found, nothing to execute.")
		return nil
	}

	for _, run := range a.model.Runs {
		probe := a.model.Probes[run.ProbeType]
		epDef, ok := probe.SessionEntryPoint()
		if !ok {
			// Validate() already rejects this; guard anyway.
			return fmt.Errorf("probe %q declares no session entry point", run.ProbeType)
		}

		session := a.engine.NewSession()
		a.logger.Info("🚀 Starting probe run.",
			"probe", run.ProbeType,
			"run", run.Name,
			"session", session.ID(),
		)

		if _, err := session.Run(ctx, epDef.EntryPoint(), runtime.Args(run.Arguments)); err != nil {
			return fmt.Errorf("probe run %q failed: %w", run.Name, err)
		}

		a.logger.Info("🏁 Probe run finished.",
			"probe", run.ProbeType,
			"run", run.Name,
			"contracts_registered", reg.Count(),
			"nested_calls", len(session.Trace()),
		)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// Engine returns the engine built by the most recent Run. This is primarily
// for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// openStore builds the configured named-key store backend.
func (a *App) openStore() (storage.Store, func(), error) {
	switch a.appConfig.StoreBackend {
	case StoreSQLite:
		s, err := sqlite.Open(a.appConfig.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		a.logger.Debug("SQLite store opened.", "path", a.appConfig.StorePath)
		return s, func() {
			if err := s.Close(); err != nil {
				a.logger.Error("Failed to close sqlite store.", "error", err)
			}
		}, nil
	default:
		return memstore.New(), func() {}, nil
	}
}

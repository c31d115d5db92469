// Package app encapsulates the harness's dependencies, configuration, and
// lifecycle: logger setup, configuration loading, probe module
// registration, and the run loop.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/chainprobe/internal/config"
	"github.com/vk/chainprobe/internal/ctxlog"
	"github.com/vk/chainprobe/internal/engine"
	"github.com/vk/chainprobe/internal/runtime"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	table     *runtime.Table
	model     *config.Model
	appConfig *Config
	engine    *engine.Engine
}

// New is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and handler
// table.
func New(outW io.Writer, appConfig *Config, loader config.Loader, modules ...runtime.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Merge all configuration paths into a single collection for the loader.
	var configPaths []string
	if appConfig.ProbesPath != "" {
		configPaths = append(configPaths, appConfig.ProbesPath)
	}
	if appConfig.RunPath != "" {
		configPaths = append(configPaths, appConfig.RunPath)
	}

	model, err := loader.Load(ctx, configPaths...)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	// Compile the handler table from the probe modules.
	table := runtime.NewTable()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(table)
	}
	logger.Debug("All probe modules registered.", "count", len(modules), "handlers", table.Names())

	// Validate the integrity of the model against the compiled handlers.
	if err := model.Validate(table); err != nil {
		// This is a programmer error (mismatch between code and config), so we panic.
		panic(err)
	}
	logger.Debug("Model validation passed.")

	return &App{
		outW:      outW,
		logger:    logger,
		table:     table,
		model:     model,
		appConfig: appConfig,
	}
}

// Model returns the application's loaded configuration model. This is
// primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Table returns the application's handler table. This is primarily for
// testing.
func (a *App) Table() *runtime.Table {
	return a.table
}

// Package cli processes command-line arguments into an app configuration.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vk/chainprobe/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("chainprobe", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
chainprobe - A regression-probe harness for contract storage and cross-contract calls.

Usage:
  chainprobe [options] [RUN_PATH]

Arguments:
  RUN_PATH
    Path to a single .hcl run file or a directory containing .hcl run files.

Options:
`)
		flagSet.PrintDefaults()
	}

	runFlag := flagSet.String("run", "", "Path to the run file or directory.")
	probesPathFlag := flagSet.String("probes-path", "probes", "Path to the directory containing probe manifests.")
	storeFlag := flagSet.String("store", "memory", "Named-key store backend. Options: 'memory' or 'sqlite'.")
	storePathFlag := flagSet.String("store-path", "", "Path to the SQLite database file (required with -store=sqlite).")
	maxDepthFlag := flagSet.Int("max-call-depth", 0, "Maximum nested contract call depth. 0 uses the engine default.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := *runFlag
	if path == "" && flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Run path determined.", "path", path)

	if path == "" {
		slog.Debug("No run path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	store := strings.ToLower(*storeFlag)
	if store != app.StoreMemory && store != app.StoreSQLite {
		return nil, false, &ExitError{Code: 2, Message: "invalid store: must be 'memory' or 'sqlite'"}
	}
	if store == app.StoreSQLite && *storePathFlag == "" {
		return nil, false, &ExitError{Code: 2, Message: "-store-path is required when -store=sqlite"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		RunPath:      path,
		ProbesPath:   *probesPathFlag,
		StoreBackend: store,
		StorePath:    *storePathFlag,
		MaxCallDepth: *maxDepthFlag,
		LogFormat:    logFormat,
		LogLevel:     logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

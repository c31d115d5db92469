package app

import "errors"

// Store backend names accepted by Config.StoreBackend.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RunPath    string // hcl run files
	ProbesPath string // hcl manifests + compiled handlers

	StoreBackend string
	StorePath    string
	MaxCallDepth int

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.RunPath == "" {
		return nil, errors.New("RunPath is a required configuration field and cannot be empty")
	}
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StoreMemory
	}
	if cfg.StoreBackend == StoreSQLite && cfg.StorePath == "" {
		return nil, errors.New("StorePath is required for the sqlite store backend")
	}
	return &cfg, nil
}

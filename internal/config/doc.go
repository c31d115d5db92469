// Package config defines the format-agnostic model of the harness
// configuration: probe definitions (entry point metadata and handler
// bindings) and run blocks (which probes to execute). Loaders for concrete
// formats translate into this model; see internal/hcl.
package config

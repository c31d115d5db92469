// Package schema holds the HCL-tagged structs the loader decodes manifest
// and run files into, before translation into the format-agnostic config
// model.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File is the top-level structure of one configuration file. A file may
// hold probe manifests, run blocks, or both.
type File struct {
	Probes []*Probe `hcl:"probe,block"`
	Runs   []*Run   `hcl:"run,block"`
}

// Probe represents a `probe` block from a manifest file.
type Probe struct {
	Name        string        `hcl:"name,label"`
	Description string        `hcl:"description,optional"`
	EntryPoints []*EntryPoint `hcl:"entry_point,block"`
}

// EntryPoint declares one entry point of a probe. The returns attribute is
// a type expression (`unit`, `string`, `list(number)`, ...), kept as an
// expression here and parsed during translation.
type EntryPoint struct {
	Name    string         `hcl:"name,label"`
	Kind    string         `hcl:"kind"`
	Access  string         `hcl:"access,optional"`
	Returns hcl.Expression `hcl:"returns"`
	Handler string         `hcl:"handler,optional"`
	Params  []*Parameter   `hcl:"parameter,block"`
}

// Parameter declares one named, typed argument of an entry point.
type Parameter struct {
	Name string         `hcl:"name,label"`
	Type hcl.Expression `hcl:"type"`
}

// RunArgs represents the content of the `arguments` block within a run.
type RunArgs struct {
	Body hcl.Body `hcl:",remain"`
}

// Run represents a `run` block: a request to execute a probe's session
// entry point.
type Run struct {
	ProbeType string   `hcl:"probe_type,label"`
	Name      string   `hcl:"instance_name,label"`
	Arguments *RunArgs `hcl:"arguments,block"`
}

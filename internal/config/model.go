package config

import (
	"github.com/vk/chainprobe/internal/contract"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of everything loaded from the
// configuration surface.
type Model struct {
	Probes map[string]*ProbeDefinition
	Runs   []*Run
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{Probes: make(map[string]*ProbeDefinition)}
}

// ProbeDefinition is the format-agnostic representation of a probe's
// manifest.
type ProbeDefinition struct {
	Name        string
	Description string
	EntryPoints map[string]*EntryPointDefinition
}

// EntryPointDefinition declares one entry point of a probe: its call
// surface plus the name of the Go handler that implements it.
type EntryPointDefinition struct {
	Name    string
	Kind    contract.Kind
	Access  contract.Access
	Params  []contract.Parameter
	Returns cty.Type
	Handler string
}

// EntryPoint materializes the declared metadata as a contract entry point.
func (d *EntryPointDefinition) EntryPoint() contract.EntryPoint {
	ep := contract.NewEntryPoint(d.Name, d.Params, d.Returns, d.Access, d.Kind)
	ep.Handler = d.Handler
	return ep
}

// SessionEntryPoint returns the probe's single session-kind entry point, if
// it declares one.
func (p *ProbeDefinition) SessionEntryPoint() (*EntryPointDefinition, bool) {
	for _, ep := range p.EntryPoints {
		if ep.Kind == contract.KindSession {
			return ep, true
		}
	}
	return nil, false
}

// Run is the format-agnostic representation of a `run` block: one execution
// of a probe's session entry point with evaluated arguments.
type Run struct {
	ProbeType string
	Name      string
	Arguments map[string]cty.Value
}

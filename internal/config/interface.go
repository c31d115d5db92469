package config

import (
	"context"
	"fmt"

	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/runtime"
)

// Loader loads configuration from one or more paths into the unified model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}

// Validate checks the integrity of the model against the compiled handler
// table: every declared handler binding must name a registered handler, and
// every session entry point must have a binding, since it is the only way
// to invoke the probe. Contract-kind entry points may be declared unbound;
// the engine rejects them at dispatch time instead.
func (m *Model) Validate(table *runtime.Table) error {
	for _, probe := range m.Probes {
		for _, ep := range probe.EntryPoints {
			if ep.Handler == "" {
				if ep.Kind == contract.KindSession {
					return fmt.Errorf("probe %q: session entry point %q has no handler binding", probe.Name, ep.Name)
				}
				continue
			}
			if _, ok := table.Lookup(ep.Handler); !ok {
				return fmt.Errorf("probe %q: entry point %q names unknown handler %q", probe.Name, ep.Name, ep.Handler)
			}
		}
	}
	for _, run := range m.Runs {
		probe, ok := m.Probes[run.ProbeType]
		if !ok {
			return fmt.Errorf("run %q: unknown probe %q", run.Name, run.ProbeType)
		}
		if _, ok := probe.SessionEntryPoint(); !ok {
			return fmt.Errorf("run %q: probe %q declares no session entry point", run.Name, run.ProbeType)
		}
	}
	return nil
}

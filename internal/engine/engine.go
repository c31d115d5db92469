// Package engine hosts probe execution. It implements the runtime.Context
// capability surface on top of the contract registry, the named-key store,
// and the handler table, and executes every call synchronously to
// completion.
//
// One Engine serves one harness run. Each top-level invocation happens
// inside a Session, which owns the account namespace and records a trace of
// every nested contract call. There is no internal concurrency: a nested
// call blocks its caller until the callee returns, and the only bound on
// nesting is the configured call depth limit.
package engine

import (
	"errors"

	"github.com/vk/chainprobe/internal/registry"
	"github.com/vk/chainprobe/internal/runtime"
	"github.com/vk/chainprobe/internal/storage"
)

// DefaultMaxCallDepth bounds nested contract calls when no explicit limit
// is configured.
const DefaultMaxCallDepth = 32

var (
	// ErrNoSuchEntryPoint is returned when a contract does not expose the
	// named entry point.
	ErrNoSuchEntryPoint = errors.New("no such entry point")

	// ErrNoHandler is returned when an entry point exists as metadata but
	// has no registered handler. Entry points registered without a binding
	// are deliberately unreachable.
	ErrNoHandler = errors.New("entry point has no registered handler")

	// ErrSessionEntryPoint is returned when a session-kind entry point is
	// invoked through a nested contract call.
	ErrSessionEntryPoint = errors.New("session entry point cannot be called as a contract")

	// ErrCallDepth is returned when nested calls exceed the engine's limit.
	ErrCallDepth = errors.New("maximum call depth exceeded")
)

// Engine wires the registry, the store, and the handler table together.
type Engine struct {
	registry *registry.Registry
	store    storage.Store
	table    *runtime.Table
	maxDepth int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxCallDepth overrides the nested call depth limit.
func WithMaxCallDepth(depth int) Option {
	return func(e *Engine) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// New creates an engine over the given collaborators.
func New(reg *registry.Registry, store storage.Store, table *runtime.Table, opts ...Option) *Engine {
	e := &Engine{
		registry: reg,
		store:    store,
		table:    table,
		maxDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry exposes the engine's contract registry. This is primarily for
// tests asserting on the end state of a run.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Store exposes the engine's named-key store.
func (e *Engine) Store() storage.Store {
	return e.store
}

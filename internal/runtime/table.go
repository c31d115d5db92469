package runtime

import (
	"fmt"
	"log/slog"
	"sort"
)

// Module is the interface probe packages implement to be registered with a
// harness instance.
type Module interface {
	Register(table *Table)
}

// Table holds all the registered entry point handlers for a single harness
// instance.
type Table struct {
	all map[string]HandlerFunc
}

// NewTable creates and initializes a new handler table.
func NewTable() *Table {
	return &Table{all: make(map[string]HandlerFunc)}
}

// Register registers a Go function under a handler name. Registering the
// same name twice is a programmer error and panics.
func (t *Table) Register(name string, fn HandlerFunc) {
	if _, exists := t.all[name]; exists {
		panic(fmt.Sprintf("handler with name '%s' already registered", name))
	}
	slog.Debug("Registering entry point handler.", "name", name)
	t.all[name] = fn
}

// Lookup returns the handler registered under name.
func (t *Table) Lookup(name string) (HandlerFunc, bool) {
	fn, ok := t.all[name]
	return fn, ok
}

// Names returns the registered handler names, sorted for stable logs.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.all))
	for name := range t.all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

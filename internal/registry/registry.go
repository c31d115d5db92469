// Package registry implements the contract registry: an append-only arena
// of registered callable units.
//
// Handles are 1-based indices into the arena. A registered contract is
// immutable: its entry point table and the initial contents of its namespace
// are fixed at registration time and the arena never frees or reorders
// slots. This matches the handle lifecycle the execution engine exposes,
// where contracts are created once and owned by the host for the rest of
// the run.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/ctxlog"
	"github.com/vk/chainprobe/internal/storage"
)

// ErrUnknownHandle is returned when a handle does not name a registered
// contract.
var ErrUnknownHandle = errors.New("unknown contract handle")

// Contract is one immutable arena record.
type Contract struct {
	Handle      contract.Handle
	EntryPoints *contract.EntryPoints
}

// Registry holds all contracts registered during a single harness run.
type Registry struct {
	mu        sync.Mutex
	store     storage.Store
	contracts []*Contract
}

// New creates an empty registry whose contract namespaces are backed by the
// given store.
func New(store storage.Store) *Registry {
	return &Registry{store: store}
}

// Add registers a new contract with the given entry point table and initial
// namespace, and returns its handle. A nil namedKeys is an empty namespace.
// Any storage failure is fatal to the whole operation; the registry makes no
// attempt at partial-registration recovery.
func (r *Registry) Add(ctx context.Context, eps *contract.EntryPoints, namedKeys contract.NamedKeys) (contract.Handle, error) {
	logger := ctxlog.FromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	handle := contract.Handle(len(r.contracts) + 1)
	owner := storage.ContractOwner(handle)
	for name, key := range namedKeys {
		if err := r.store.Put(ctx, owner, name, key); err != nil {
			return 0, fmt.Errorf("seed namespace of %s: %w", handle, err)
		}
	}

	r.contracts = append(r.contracts, &Contract{
		Handle:      handle,
		EntryPoints: eps,
	})

	logger.Debug("Contract registered.",
		"handle", handle,
		"entry_points", eps.Names(),
		"named_keys", len(namedKeys),
	)
	return handle, nil
}

// Get returns the registered contract for a handle.
func (r *Registry) Get(h contract.Handle) (*Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !h.Valid() || int(h) > len(r.contracts) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	return r.contracts[int(h)-1], nil
}

// Count returns the number of contracts registered so far.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contracts)
}

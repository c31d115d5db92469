// Package storage defines the interface for the named-key store: the
// per-owner key space that maps string names to stored keys.
//
// Each owner (an account session or a registered contract) has an isolated
// namespace. The store only deals in contract.Key values; interpretation of
// a key is the caller's concern.
//
// Implementations MUST be safe for concurrent use. See internal/storage/memory
// for the ephemeral reference implementation and internal/storage/sqlite for
// the persistent one.
package storage

import (
	"context"

	"github.com/vk/chainprobe/internal/contract"
)

// Owner identifies one namespace in the store.
type Owner string

// AccountOwner returns the namespace owner id for an account session.
func AccountOwner(id string) Owner {
	return Owner("account:" + id)
}

// ContractOwner returns the namespace owner id for a registered contract.
func ContractOwner(h contract.Handle) Owner {
	return Owner(h.String())
}

// Store is the interface for reading and writing named keys.
type Store interface {
	// Get returns the key stored under name in the owner's namespace. The
	// boolean reports presence; a missing name is not an error.
	Get(ctx context.Context, owner Owner, name string) (contract.Key, bool, error)

	// Put stores a key under name in the owner's namespace, replacing any
	// previous value.
	Put(ctx context.Context, owner Owner, name string, key contract.Key) error

	// Names returns the names present in the owner's namespace. Order is
	// unspecified.
	Names(ctx context.Context, owner Owner) ([]string, error)
}

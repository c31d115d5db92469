// Package memory provides an ephemeral, thread-safe, in-memory
// implementation of the storage.Store interface.
//
// It is created fresh for each harness run and uses sync.Map because the
// key space is stable (owners are known once registered) while individual
// entries are written and read concurrently by nested call frames.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/storage"
)

// Store is the in-memory named-key store.
type Store struct {
	entries sync.Map // composite "owner\x00name" -> contract.Key
}

// entrySep joins owner and name into one map key. NUL cannot appear in
// either part.
const entrySep = "\x00"

// New creates a new, empty in-memory store.
func New() *Store {
	return &Store{}
}

func entryKey(owner storage.Owner, name string) string {
	return string(owner) + entrySep + name
}

// Get returns the key stored under name in the owner's namespace.
func (s *Store) Get(ctx context.Context, owner storage.Owner, name string) (contract.Key, bool, error) {
	value, ok := s.entries.Load(entryKey(owner, name))
	if !ok {
		return contract.Key{}, false, nil
	}
	return value.(contract.Key), true, nil
}

// Put stores a key under name in the owner's namespace.
func (s *Store) Put(ctx context.Context, owner storage.Owner, name string, key contract.Key) error {
	s.entries.Store(entryKey(owner, name), key)
	return nil
}

// Names returns the names present in the owner's namespace.
func (s *Store) Names(ctx context.Context, owner storage.Owner) ([]string, error) {
	prefix := string(owner) + entrySep
	var names []string
	s.entries.Range(func(k, _ any) bool {
		composite := k.(string)
		if strings.HasPrefix(composite, prefix) {
			names = append(names, composite[len(prefix):])
		}
		return true
	})
	return names, nil
}

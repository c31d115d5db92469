// Package contract defines the immutable data model for registered callable
// units: handles, stored keys, named-key maps, and entry point tables.
package contract

import (
	"errors"
	"fmt"
)

// ErrNotAHandle is returned when a stored key is resolved as a contract
// handle but does not carry one.
var ErrNotAHandle = errors.New("stored key does not reference a contract")

// Handle is an opaque identifier for a registered contract. Handles are
// 1-based indices into the registry arena, so the zero value is invalid.
type Handle uint32

// Valid reports whether the handle refers to a registered contract slot.
func (h Handle) Valid() bool {
	return h != 0
}

// String serializes the handle into its canonical log representation.
func (h Handle) String() string {
	if !h.Valid() {
		return "contract-invalid"
	}
	return fmt.Sprintf("contract-%04d", uint32(h))
}

// KeyKind discriminates the variants of a stored Key.
type KeyKind uint8

const (
	// KindHash marks a key that references a registered contract.
	KindHash KeyKind = iota
	// KindURef marks an opaque unforgeable reference into storage.
	KindURef
)

// String returns the lowercase name of the kind.
func (k KeyKind) String() string {
	switch k {
	case KindHash:
		return "hash"
	case KindURef:
		return "uref"
	default:
		return fmt.Sprintf("keykind(%d)", uint8(k))
	}
}

// Key is the tagged value stored under a name in a namespace. It either
// references a registered contract (KindHash) or an opaque storage
// reference (KindURef).
type Key struct {
	Kind     KeyKind
	Contract Handle
	URef     string
}

// HashKey wraps a contract handle as a storable key.
func HashKey(h Handle) Key {
	return Key{Kind: KindHash, Contract: h}
}

// URefKey wraps an opaque reference as a storable key.
func URefKey(ref string) Key {
	return Key{Kind: KindURef, URef: ref}
}

// AsHandle resolves the key to a contract handle. Resolving a non-hash key
// is a fatal condition for the caller: the stored reference cannot be
// dispatched to.
func (k Key) AsHandle() (Handle, error) {
	if k.Kind != KindHash || !k.Contract.Valid() {
		return 0, fmt.Errorf("%w: kind %s", ErrNotAHandle, k.Kind)
	}
	return k.Contract, nil
}

// String serializes the key for logs.
func (k Key) String() string {
	switch k.Kind {
	case KindHash:
		return fmt.Sprintf("hash(%s)", k.Contract)
	case KindURef:
		return fmt.Sprintf("uref(%s)", k.URef)
	default:
		return k.Kind.String()
	}
}

// NamedKeys is a contract's namespace: a mapping from string names to stored
// keys. A nil map is a valid, empty namespace.
type NamedKeys map[string]Key

// Clone returns an independent copy of the named keys. Registered contracts
// hold a clone so later mutations of the source map cannot leak in.
func (n NamedKeys) Clone() NamedKeys {
	if n == nil {
		return nil
	}
	out := make(NamedKeys, len(n))
	for name, key := range n {
		out[name] = key
	}
	return out
}

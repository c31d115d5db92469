// Package runtime defines the capability surface that probe code programs
// against.
//
// A probe never touches the registry or the store directly. Everything it
// can do (read and write its own namespace, register new contracts, call
// other contracts) goes through the Context interface, which the host
// engine implements and injects. Unit tests substitute a fake.
package runtime

import (
	"context"

	"github.com/vk/chainprobe/internal/contract"
	"github.com/zclconf/go-cty/cty"
)

// Args carries the named, typed arguments of one entry point invocation.
// The forwarding probe always passes an empty set; the type exists because
// the engine's call surface is typed.
type Args map[string]cty.Value

// Context is the narrow interface the host engine exposes to executing
// probe code. GetKey and PutKey operate on the namespace of the currently
// executing frame: the account's namespace in a session entry point, the
// callee contract's namespace inside a nested call.
type Context interface {
	// GetKey returns the key stored under name in the executing frame's own
	// namespace. The boolean reports presence; absence is not an error.
	GetKey(ctx context.Context, name string) (contract.Key, bool, error)

	// PutKey stores a key under name in the executing frame's own namespace.
	PutKey(ctx context.Context, name string, key contract.Key) error

	// NewContract registers an immutable contract from an entry point table
	// and an optional initial namespace, returning its handle.
	NewContract(ctx context.Context, eps *contract.EntryPoints, namedKeys contract.NamedKeys) (contract.Handle, error)

	// CallContract synchronously invokes a named entry point of another
	// contract. The callee's failure is the caller's failure, unchanged.
	CallContract(ctx context.Context, h contract.Handle, entryPoint string, args Args) (cty.Value, error)
}

// HandlerFunc is the Go implementation of one entry point. Unit entry
// points return cty.NilVal.
type HandlerFunc func(ctx context.Context, rt Context, args Args) (cty.Value, error)

// Package forwarder is a regression probe for the engine's contract-storage
// and cross-contract-call subsystem.
//
// Its session entry point installs three generations of the same stored
// contract, each generation's namespace pointing at the previous one under
// the well-known name "contract", publishes the newest generation in the
// caller's namespace, and then dispatches a call through the chain. The
// recursive entry point forwards while the key is present and, at the tail
// of the chain, registers one more contract whose only entry point is
// deliberately unreachable, then returns normally.
package forwarder

import (
	"context"
	"fmt"

	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/ctxlog"
	"github.com/vk/chainprobe/internal/runtime"
	"github.com/zclconf/go-cty/cty"
)

const (
	// WellKnownKey is the single name used both inside a generation's
	// namespace (pointing at the previous generation) and in the caller's
	// account namespace (recording the published generation).
	WellKnownKey = "contract"

	// EntryPointExt is the recursive entry point every generation exposes.
	EntryPointExt = "contract_ext"

	// UnreachableEntryPoint is the name registered by the tail of the
	// chain. It has no handler binding, so invoking it can never succeed.
	UnreachableEntryPoint = "functiondoesnotexist"

	// HandlerCall and HandlerExt are the registered Go handler names.
	HandlerCall = "OnCallForwarder"
	HandlerExt  = "ExtForwarder"
)

// Generations is the fixed length of the installed chain.
const Generations = 3

// CallEntryPoint describes the probe's top-level session entry point.
func CallEntryPoint() contract.EntryPoint {
	ep := contract.NewEntryPoint("call", nil, cty.NilType, contract.AccessPublic, contract.KindSession)
	ep.Handler = HandlerCall
	return ep
}

// extEntryPoints builds the entry point table every generation carries:
// just contract_ext, bound to this package's recursive handler.
func extEntryPoints() *contract.EntryPoints {
	ep := contract.NewEntryPoint(EntryPointExt, nil, cty.NilType, contract.AccessPublic, contract.KindContract)
	ep.Handler = HandlerExt

	eps := contract.NewEntryPoints()
	eps.Add(ep)
	return eps
}

// store registers one generation carrying the given namespace.
func store(ctx context.Context, rt runtime.Context, namedKeys contract.NamedKeys) (contract.Handle, error) {
	return rt.NewContract(ctx, extEntryPoints(), namedKeys)
}

// Install builds the three-generation chain and publishes the newest
// generation's handle under the well-known name in the caller's namespace.
// Any registry or storage failure aborts the whole operation; there is no
// partial-install recovery.
func Install(ctx context.Context, rt runtime.Context) (contract.Handle, error) {
	logger := ctxlog.FromContext(ctx)

	h1, err := store(ctx, rt, nil)
	if err != nil {
		return 0, fmt.Errorf("install generation 1: %w", err)
	}

	h2, err := store(ctx, rt, contract.NamedKeys{WellKnownKey: contract.HashKey(h1)})
	if err != nil {
		return 0, fmt.Errorf("install generation 2: %w", err)
	}

	h3, err := store(ctx, rt, contract.NamedKeys{WellKnownKey: contract.HashKey(h2)})
	if err != nil {
		return 0, fmt.Errorf("install generation 3: %w", err)
	}

	if err := rt.PutKey(ctx, WellKnownKey, contract.HashKey(h3)); err != nil {
		return 0, fmt.Errorf("publish generation 3: %w", err)
	}

	logger.Info("Forwarding chain installed.", "generations", Generations, "published", h3)
	return h3, nil
}

// Dispatch invokes contract_ext on the given handle with empty arguments,
// propagating the callee's outcome unchanged.
func Dispatch(ctx context.Context, rt runtime.Context, h contract.Handle) error {
	_, err := rt.CallContract(ctx, h, EntryPointExt, nil)
	return err
}

// OnCall is the top-level handler: install, then dispatch on the returned
// handle.
func OnCall(ctx context.Context, rt runtime.Context, args runtime.Args) (cty.Value, error) {
	h, err := Install(ctx, rt)
	if err != nil {
		return cty.NilVal, err
	}
	return cty.NilVal, Dispatch(ctx, rt, h)
}

// Ext is the recursive handler. If the executing contract's namespace holds
// the well-known key, the call is forwarded to the referenced contract and
// the inner call's result is returned unchanged. Otherwise the chain has
// terminated: one more contract is registered whose sole entry point is
// unreachable, and the call returns normally.
func Ext(ctx context.Context, rt runtime.Context, args runtime.Args) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	key, ok, err := rt.GetKey(ctx, WellKnownKey)
	if err != nil {
		return cty.NilVal, fmt.Errorf("look up %q: %w", WellKnownKey, err)
	}

	if ok {
		next, err := key.AsHandle()
		if err != nil {
			return cty.NilVal, fmt.Errorf("resolve %q: %w", WellKnownKey, err)
		}
		return rt.CallContract(ctx, next, EntryPointExt, nil)
	}

	// Tail of the chain: mark termination by registering a contract that
	// exposes only an entry point nothing can ever invoke.
	ep := contract.NewEntryPoint(UnreachableEntryPoint, nil, cty.NilType, contract.AccessPublic, contract.KindContract)
	eps := contract.NewEntryPoints()
	eps.Add(ep)

	terminal, err := rt.NewContract(ctx, eps, nil)
	if err != nil {
		return cty.NilVal, fmt.Errorf("register terminal contract: %w", err)
	}
	logger.Info("Forwarding chain terminated.", "terminal", terminal)
	return cty.NilVal, nil
}

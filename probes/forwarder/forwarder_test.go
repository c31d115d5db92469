package forwarder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/engine"
	"github.com/vk/chainprobe/internal/registry"
	"github.com/vk/chainprobe/internal/runtime"
	"github.com/vk/chainprobe/internal/storage"
	"github.com/vk/chainprobe/internal/storage/memory"
	"github.com/zclconf/go-cty/cty"
)

// harness wires a real engine over an in-memory store with this probe's
// handlers registered.
type harness struct {
	engine  *engine.Engine
	session *engine.Session
	store   *memory.Store
	table   *runtime.Table
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memory.New()
	table := runtime.NewTable()
	(&Module{}).Register(table)

	eng := engine.New(registry.New(store), store, table)
	return &harness{
		engine:  eng,
		session: eng.NewSession(),
		store:   store,
		table:   table,
	}
}

// runSession executes an ad-hoc handler as a session entry point, giving a
// test direct access to a runtime.Context in the account frame.
func (h *harness) runSession(t *testing.T, fn runtime.HandlerFunc) error {
	t.Helper()
	name := "TestSession_" + t.Name()
	h.table.Register(name, fn)
	ep := contract.NewEntryPoint("call", nil, cty.NilType, contract.AccessPublic, contract.KindSession)
	ep.Handler = name
	_, err := h.session.Run(context.Background(), ep, nil)
	return err
}

// namespaceKey reads one name from a contract's namespace.
func (h *harness) namespaceKey(t *testing.T, owner contract.Handle, name string) (contract.Key, bool) {
	t.Helper()
	key, ok, err := h.store.Get(context.Background(), storage.ContractOwner(owner), name)
	require.NoError(t, err)
	return key, ok
}

// forwardingHops counts trace records whose caller is a contract, i.e.
// contract-to-contract forwards as opposed to the initial dispatch from the
// account frame.
func forwardingHops(trace []engine.CallRecord) int {
	hops := 0
	for _, rec := range trace {
		if rec.Caller.Valid() {
			hops++
		}
	}
	return hops
}

func TestInstall_BuildsThreeGenerationChain(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	var published contract.Handle

	err := h.runSession(t, func(ctx context.Context, rt runtime.Context, args runtime.Args) (cty.Value, error) {
		var err error
		published, err = Install(ctx, rt)
		return cty.NilVal, err
	})
	require.NoError(t, err)

	require.Equal(t, Generations, h.engine.Registry().Count())
	require.Equal(t, contract.Handle(3), published, "the published handle is always generation 3")

	// Generation 1 has an empty namespace; 2 and 3 point one generation back.
	_, ok := h.namespaceKey(t, 1, WellKnownKey)
	assert.False(t, ok, "generation 1 namespace must be empty")

	key, ok := h.namespaceKey(t, 2, WellKnownKey)
	require.True(t, ok)
	assert.Equal(t, contract.HashKey(1), key)

	key, ok = h.namespaceKey(t, 3, WellKnownKey)
	require.True(t, ok)
	assert.Equal(t, contract.HashKey(2), key)

	// The caller's account namespace records the published generation.
	key, ok, err = h.store.Get(context.Background(), h.session.Owner(), WellKnownKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, contract.HashKey(published), key)

	// Every generation exposes exactly the recursive entry point.
	for gen := contract.Handle(1); gen <= Generations; gen++ {
		rec, err := h.engine.Registry().Get(gen)
		require.NoError(t, err)
		assert.Equal(t, []string{EntryPointExt}, rec.EntryPoints.Names())
	}
}

func TestCall_EndToEnd(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := h.session.Run(context.Background(), CallEntryPoint(), nil)
	require.NoError(t, err, "the full install-then-dispatch scenario completes normally")

	// 3 generations plus the terminal registration.
	assert.Equal(t, Generations+1, h.engine.Registry().Count())

	// The dispatch from the account frame plus exactly two forwards.
	trace := h.session.Trace()
	require.Len(t, trace, 3)
	assert.Equal(t, 2, forwardingHops(trace))

	assert.Equal(t, engine.CallRecord{Caller: 0, Callee: 3, EntryPoint: EntryPointExt}, trace[0])
	assert.Equal(t, engine.CallRecord{Caller: 3, Callee: 2, EntryPoint: EntryPointExt}, trace[1])
	assert.Equal(t, engine.CallRecord{Caller: 2, Callee: 1, EntryPoint: EntryPointExt}, trace[2])

	// The published handle is generation 3.
	key, ok, err := h.store.Get(context.Background(), h.session.Owner(), WellKnownKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, contract.HashKey(3), key)
}

func TestCall_TerminalRegistration(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	_, err := h.session.Run(context.Background(), CallEntryPoint(), nil)
	require.NoError(t, err)

	terminal, err := h.engine.Registry().Get(4)
	require.NoError(t, err)

	// The terminal contract exposes exactly one, unbound entry point and
	// carries no namespace.
	require.Equal(t, []string{UnreachableEntryPoint}, terminal.EntryPoints.Names())
	ep, ok := terminal.EntryPoints.Get(UnreachableEntryPoint)
	require.True(t, ok)
	assert.Empty(t, ep.Handler)
	assert.Equal(t, cty.NilType, ep.Returns)
	assert.Empty(t, ep.Params)
	assert.Equal(t, contract.AccessPublic, ep.Access)
	assert.Equal(t, contract.KindContract, ep.Kind)

	names, err := h.store.Names(context.Background(), storage.ContractOwner(terminal.Handle))
	require.NoError(t, err)
	assert.Empty(t, names)

	// It was never invoked during the scenario.
	for _, rec := range h.session.Trace() {
		assert.NotEqual(t, terminal.Handle, rec.Callee)
	}

	// And invoking it can never succeed.
	err = h.runSession(t, func(ctx context.Context, rt runtime.Context, args runtime.Args) (cty.Value, error) {
		return rt.CallContract(ctx, terminal.Handle, UnreachableEntryPoint, nil)
	})
	require.ErrorIs(t, err, engine.ErrNoHandler)
}

func TestExt_OnEmptyNamespaceGoesStraightToTerminal(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	// Install, then bypass the chain and dispatch directly on generation 1.
	err := h.runSession(t, func(ctx context.Context, rt runtime.Context, args runtime.Args) (cty.Value, error) {
		if _, err := Install(ctx, rt); err != nil {
			return cty.NilVal, err
		}
		return cty.NilVal, Dispatch(ctx, rt, 1)
	})
	require.NoError(t, err)

	// No forwarding happened: one dispatch, zero hops.
	trace := h.session.Trace()
	require.Len(t, trace, 1)
	assert.Equal(t, 0, forwardingHops(trace))

	// The terminal registration still happened.
	assert.Equal(t, Generations+1, h.engine.Registry().Count())
}

func TestExt_StoredReferenceMustBeAHandle(t *testing.T) {
	t.Parallel()

	h := newHarness(t)

	// A contract whose well-known key is not a contract reference: the
	// forward state must fail fatally instead of dispatching.
	err := h.runSession(t, func(ctx context.Context, rt runtime.Context, args runtime.Args) (cty.Value, error) {
		poisoned, err := rt.NewContract(ctx, extEntryPoints(), contract.NamedKeys{
			WellKnownKey: contract.URefKey("uref-not-a-contract"),
		})
		if err != nil {
			return cty.NilVal, err
		}
		return rt.CallContract(ctx, poisoned, EntryPointExt, nil)
	})
	require.ErrorIs(t, err, contract.ErrNotAHandle)
}

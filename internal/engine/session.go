package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/ctxlog"
	"github.com/vk/chainprobe/internal/runtime"
	"github.com/vk/chainprobe/internal/storage"
	"github.com/zclconf/go-cty/cty"
)

// CallRecord is one nested contract call observed during a session. Caller
// is the zero handle when the call originated from the account-level
// session frame.
type CallRecord struct {
	Caller     contract.Handle
	Callee     contract.Handle
	EntryPoint string
}

// Session is one top-level invocation surface. It owns the account
// namespace for the run and records every nested call for later
// inspection.
type Session struct {
	engine *Engine
	id     string
	owner  storage.Owner

	mu    sync.Mutex
	trace []CallRecord
}

// NewSession opens a session with a fresh account namespace.
func (e *Engine) NewSession() *Session {
	id := uuid.NewString()
	return &Session{
		engine: e,
		id:     id,
		owner:  storage.AccountOwner(id),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Owner returns the session's account namespace owner id.
func (s *Session) Owner() storage.Owner {
	return s.owner
}

// Trace returns a copy of the nested calls recorded so far.
func (s *Session) Trace() []CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CallRecord, len(s.trace))
	copy(out, s.trace)
	return out
}

func (s *Session) record(rec CallRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trace = append(s.trace, rec)
}

// Run executes a session-kind entry point in the account frame. The entry
// point's handler binding is resolved through the engine's handler table.
func (s *Session) Run(ctx context.Context, ep contract.EntryPoint, args runtime.Args) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	if ep.Kind != contract.KindSession {
		return cty.NilVal, fmt.Errorf("entry point %q is %s-kind, expected session", ep.Name, ep.Kind)
	}
	fn, err := s.engine.resolveHandler(ep)
	if err != nil {
		return cty.NilVal, err
	}
	if err := checkArgs(ep, args); err != nil {
		return cty.NilVal, err
	}

	logger.Debug("Session entry point starting.", "session", s.id, "entry_point", ep.Name)
	result, err := fn(ctx, &frame{session: s, owner: s.owner}, args)
	if err != nil {
		return cty.NilVal, fmt.Errorf("session entry point %q: %w", ep.Name, err)
	}
	return checkReturn(ep, result)
}

// frame is the executing context of one call: the account frame at depth 0,
// or a callee contract's frame inside a nested call. It implements
// runtime.Context.
type frame struct {
	session *Session
	owner   storage.Owner
	handle  contract.Handle // zero in the account frame
	depth   int
}

// GetKey reads from the executing frame's own namespace.
func (f *frame) GetKey(ctx context.Context, name string) (contract.Key, bool, error) {
	return f.session.engine.store.Get(ctx, f.owner, name)
}

// PutKey writes into the executing frame's own namespace.
func (f *frame) PutKey(ctx context.Context, name string, key contract.Key) error {
	return f.session.engine.store.Put(ctx, f.owner, name, key)
}

// NewContract registers a contract through the engine's registry.
func (f *frame) NewContract(ctx context.Context, eps *contract.EntryPoints, namedKeys contract.NamedKeys) (contract.Handle, error) {
	return f.session.engine.registry.Add(ctx, eps, namedKeys.Clone())
}

// CallContract synchronously invokes a contract-kind entry point of another
// contract in a nested frame. The callee's outcome propagates unchanged.
func (f *frame) CallContract(ctx context.Context, h contract.Handle, entryPoint string, args runtime.Args) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)
	eng := f.session.engine

	if f.depth+1 > eng.maxDepth {
		return cty.NilVal, fmt.Errorf("%w (%d)", ErrCallDepth, eng.maxDepth)
	}

	rec, err := eng.registry.Get(h)
	if err != nil {
		return cty.NilVal, err
	}
	ep, ok := rec.EntryPoints.Get(entryPoint)
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: %q on %s", ErrNoSuchEntryPoint, entryPoint, h)
	}
	if ep.Kind != contract.KindContract {
		return cty.NilVal, fmt.Errorf("%w: %q on %s", ErrSessionEntryPoint, entryPoint, h)
	}
	fn, err := eng.resolveHandler(ep)
	if err != nil {
		return cty.NilVal, fmt.Errorf("call %q on %s: %w", entryPoint, h, err)
	}
	if err := checkArgs(ep, args); err != nil {
		return cty.NilVal, fmt.Errorf("call %q on %s: %w", entryPoint, h, err)
	}

	f.session.record(CallRecord{Caller: f.handle, Callee: h, EntryPoint: entryPoint})
	logger.Debug("Calling contract.",
		"session", f.session.id,
		"caller", f.handle,
		"callee", h,
		"entry_point", entryPoint,
		"depth", f.depth+1,
	)

	callee := &frame{
		session: f.session,
		owner:   storage.ContractOwner(h),
		handle:  h,
		depth:   f.depth + 1,
	}
	result, err := fn(ctx, callee, args)
	if err != nil {
		return cty.NilVal, err
	}
	return checkReturn(ep, result)
}

// resolveHandler maps an entry point to its registered Go handler. Entry
// points without a binding exist as metadata only and cannot be dispatched.
func (e *Engine) resolveHandler(ep contract.EntryPoint) (runtime.HandlerFunc, error) {
	if ep.Handler == "" {
		return nil, fmt.Errorf("%w: %q", ErrNoHandler, ep.Name)
	}
	fn, ok := e.table.Lookup(ep.Handler)
	if !ok {
		return nil, fmt.Errorf("%w: %q names unknown handler %q", ErrNoHandler, ep.Name, ep.Handler)
	}
	return fn, nil
}

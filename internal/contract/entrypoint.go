package contract

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Access is the access policy of an entry point. Only the public policy is
// implemented; the type exists so the table model is complete.
type Access uint8

const (
	// AccessPublic allows any caller to invoke the entry point.
	AccessPublic Access = iota
)

// String returns the lowercase name of the access policy.
func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	default:
		return fmt.Sprintf("access(%d)", uint8(a))
	}
}

// Kind distinguishes entry points that execute against a stored contract's
// namespace from session entry points that execute against the caller's
// account namespace.
type Kind uint8

const (
	// KindContract entry points run with the callee contract's namespace.
	KindContract Kind = iota
	// KindSession entry points run with the calling account's namespace and
	// can only be invoked at the top level, never via a nested call.
	KindSession
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract"
	case KindSession:
		return "session"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind parses the manifest spelling of an entry point kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "contract":
		return KindContract, nil
	case "session":
		return KindSession, nil
	default:
		return 0, fmt.Errorf("unknown entry point kind %q: must be 'contract' or 'session'", s)
	}
}

// ParseAccess parses the manifest spelling of an access policy. The empty
// string defaults to public.
func ParseAccess(s string) (Access, error) {
	switch s {
	case "", "public":
		return AccessPublic, nil
	default:
		return 0, fmt.Errorf("unknown access policy %q: only 'public' is supported", s)
	}
}

// Parameter describes one named, typed argument of an entry point.
type Parameter struct {
	Name string
	Type cty.Type
}

// EntryPoint describes one externally callable function of a contract.
// Returns uses cty.NilType to mean "no value" (unit). Handler names the
// registered Go function that implements the entry point; an entry point
// with an empty Handler is valid metadata but can never be dispatched.
type EntryPoint struct {
	Name    string
	Params  []Parameter
	Returns cty.Type
	Access  Access
	Kind    Kind
	Handler string
}

// NewEntryPoint constructs an entry point with no handler binding.
func NewEntryPoint(name string, params []Parameter, returns cty.Type, access Access, kind Kind) EntryPoint {
	return EntryPoint{
		Name:    name,
		Params:  params,
		Returns: returns,
		Access:  access,
		Kind:    kind,
	}
}

// EntryPoints is an insertion-ordered set of entry points, unique by name.
// It is mutable while a contract's table is being assembled and treated as
// immutable once the contract is registered.
type EntryPoints struct {
	order  []string
	byName map[string]EntryPoint
}

// NewEntryPoints creates an empty entry point table.
func NewEntryPoints() *EntryPoints {
	return &EntryPoints{byName: make(map[string]EntryPoint)}
}

// Add appends an entry point to the table. Adding two entry points with the
// same name is a programmer error and panics.
func (e *EntryPoints) Add(ep EntryPoint) {
	if _, exists := e.byName[ep.Name]; exists {
		panic(fmt.Sprintf("entry point %q already present in table", ep.Name))
	}
	e.order = append(e.order, ep.Name)
	e.byName[ep.Name] = ep
}

// Get returns the entry point with the given name, if present.
func (e *EntryPoints) Get(name string) (EntryPoint, bool) {
	if e == nil {
		return EntryPoint{}, false
	}
	ep, ok := e.byName[name]
	return ep, ok
}

// Names returns the entry point names in insertion order.
func (e *EntryPoints) Names() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Len returns the number of entry points in the table.
func (e *EntryPoints) Len() int {
	if e == nil {
		return 0
	}
	return len(e.order)
}

package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func TestHandle_String(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		handle      Handle
		expectedStr string
	}{
		{name: "first slot", handle: 1, expectedStr: "contract-0001"},
		{name: "later slot", handle: 42, expectedStr: "contract-0042"},
		{name: "zero value is invalid", handle: 0, expectedStr: "contract-invalid"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedStr, tc.handle.String())
		})
	}
}

func TestKey_AsHandle(t *testing.T) {
	t.Parallel()

	h, err := HashKey(3).AsHandle()
	require.NoError(t, err)
	assert.Equal(t, Handle(3), h)

	_, err = URefKey("uref-abc").AsHandle()
	require.ErrorIs(t, err, ErrNotAHandle)

	// A hash key carrying the invalid zero handle must not resolve either.
	_, err = Key{Kind: KindHash}.AsHandle()
	require.ErrorIs(t, err, ErrNotAHandle)
}

func TestNamedKeys_Clone(t *testing.T) {
	t.Parallel()

	src := NamedKeys{"contract": HashKey(7)}
	clone := src.Clone()
	require.Equal(t, src, clone)

	// Mutating the source must not leak into the clone.
	src["contract"] = HashKey(8)
	assert.Equal(t, HashKey(7), clone["contract"])

	assert.Nil(t, NamedKeys(nil).Clone())
}

func TestEntryPoints_InsertionOrder(t *testing.T) {
	t.Parallel()

	eps := NewEntryPoints()
	eps.Add(NewEntryPoint("b", nil, cty.NilType, AccessPublic, KindContract))
	eps.Add(NewEntryPoint("a", nil, cty.String, AccessPublic, KindSession))

	require.Equal(t, 2, eps.Len())
	assert.Equal(t, []string{"b", "a"}, eps.Names())

	ep, ok := eps.Get("a")
	require.True(t, ok)
	assert.Equal(t, cty.String, ep.Returns)
	assert.Equal(t, KindSession, ep.Kind)

	_, ok = eps.Get("missing")
	assert.False(t, ok)
}

func TestEntryPoints_DuplicatePanics(t *testing.T) {
	t.Parallel()

	eps := NewEntryPoints()
	eps.Add(NewEntryPoint("dup", nil, cty.NilType, AccessPublic, KindContract))
	assert.Panics(t, func() {
		eps.Add(NewEntryPoint("dup", nil, cty.NilType, AccessPublic, KindContract))
	})
}

func TestEntryPoints_NilReceiver(t *testing.T) {
	t.Parallel()

	var eps *EntryPoints
	assert.Equal(t, 0, eps.Len())
	assert.Nil(t, eps.Names())
	_, ok := eps.Get("anything")
	assert.False(t, ok)
}

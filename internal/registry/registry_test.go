package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/chainprobe/internal/contract"
	"github.com/vk/chainprobe/internal/storage"
	"github.com/vk/chainprobe/internal/storage/memory"
	"github.com/zclconf/go-cty/cty"
)

func singleEntryPointTable(name string) *contract.EntryPoints {
	eps := contract.NewEntryPoints()
	eps.Add(contract.NewEntryPoint(name, nil, cty.NilType, contract.AccessPublic, contract.KindContract))
	return eps
}

func TestAdd_HandlesAreDenseAndOneBased(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := New(memory.New())

	h1, err := r.Add(ctx, singleEntryPointTable("a"), nil)
	require.NoError(t, err)
	h2, err := r.Add(ctx, singleEntryPointTable("b"), nil)
	require.NoError(t, err)

	assert.Equal(t, contract.Handle(1), h1)
	assert.Equal(t, contract.Handle(2), h2)
	assert.Equal(t, 2, r.Count())
}

func TestAdd_SeedsNamespace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()
	r := New(store)

	h1, err := r.Add(ctx, singleEntryPointTable("a"), nil)
	require.NoError(t, err)

	h2, err := r.Add(ctx, singleEntryPointTable("a"), contract.NamedKeys{
		"contract": contract.HashKey(h1),
	})
	require.NoError(t, err)

	// The new contract's namespace holds the seeded key.
	key, ok, err := store.Get(ctx, storage.ContractOwner(h2), "contract")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, contract.HashKey(h1), key)

	// The first contract's namespace stays empty.
	_, ok, err = store.Get(ctx, storage.ContractOwner(h1), "contract")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := New(memory.New())

	h, err := r.Add(ctx, singleEntryPointTable("contract_ext"), nil)
	require.NoError(t, err)

	rec, err := r.Get(h)
	require.NoError(t, err)
	assert.Equal(t, h, rec.Handle)
	assert.Equal(t, []string{"contract_ext"}, rec.EntryPoints.Names())

	_, err = r.Get(0)
	require.ErrorIs(t, err, ErrUnknownHandle)

	_, err = r.Get(42)
	require.ErrorIs(t, err, ErrUnknownHandle)
}

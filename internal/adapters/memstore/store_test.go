package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careconnect/careconnect-go/internal/testutil"
)

func TestStore_RoundTrip(t *testing.T) {
	store := New()
	ctx := context.Background()

	empty, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, empty.Authenticated())

	creds := testutil.NewCredentials().Build()
	require.NoError(t, store.Set(ctx, creds))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.Authenticated())

	// Returned value is a copy.
	got.User.Name = "tampered"
	again, err := store.Get(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, "tampered", again.User.Name)

	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))
	cleared, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, cleared.Authenticated())
}

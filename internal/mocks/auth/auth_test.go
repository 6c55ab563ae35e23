package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
)

func TestMemoryCredentialStore_RoundTrip(t *testing.T) {
	store := NewMemoryCredentialStore()
	ctx := context.Background()

	creds, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, creds.Authenticated())

	seeded := domainauth.Credentials{
		Tokens: &domainauth.TokenPair{AccessToken: "a", RefreshToken: "r"},
		User:   &domainauth.UserRecord{ID: "u1", Name: "Test", Email: "t@example.com", Role: domainauth.RoleDonor},
	}
	require.NoError(t, store.Set(ctx, seeded))

	got, err := store.Get(ctx)
	require.NoError(t, err)
	assert.True(t, got.Authenticated())
	assert.Equal(t, "u1", got.User.ID)

	// Mutating a returned snapshot must not leak into the store.
	got.Tokens.AccessToken = "tampered"
	again, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", again.Tokens.AccessToken)

	require.NoError(t, store.Clear(ctx))
	cleared, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, cleared.Authenticated())

	assert.Equal(t, 1, store.SetCalls)
	assert.Equal(t, 1, store.ClearCalls)
}

func TestMemoryCredentialStore_InjectedErrors(t *testing.T) {
	store := NewMemoryCredentialStore()
	store.GetErr = assert.AnError

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestRecordingSink_Counts(t *testing.T) {
	var sink RecordingSink
	assert.Equal(t, 0, sink.Broadcasts())
	sink.Broadcast()
	sink.Broadcast()
	assert.Equal(t, 2, sink.Broadcasts())
}

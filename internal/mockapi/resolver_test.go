package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFastResolver() *Resolver {
	return NewResolver(ResolverOptions{Latency: -1})
}

func TestResolve_MappedPath(t *testing.T) {
	r := newFastResolver()

	env, err := r.Resolve(context.Background(), "/dashboard/stats")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.Equal(t, http.StatusOK, env.Status)

	var stats struct {
		TotalDonated  int `json:"totalDonated"`
		DonationCount int `json:"donationCount"`
	}
	require.NoError(t, env.DecodeData(&stats))
	assert.Equal(t, 4000, stats.TotalDonated)
	assert.Equal(t, 3, stats.DonationCount)
}

func TestResolve_StripsQueryAndFragment(t *testing.T) {
	r := newFastResolver()

	env, err := r.Resolve(context.Background(), "/ngos?city=Mumbai&verified=true")
	require.NoError(t, err)
	assert.True(t, env.Success)
	assert.True(t, env.HasData())

	env2, err := r.Resolve(context.Background(), "/ngos#top")
	require.NoError(t, err)
	assert.True(t, env2.HasData())
}

func TestResolve_UnmappedPathFallsBack(t *testing.T) {
	r := newFastResolver()

	env, err := r.Resolve(context.Background(), "/api/v1/unknown")
	require.NoError(t, err)
	assert.True(t, env.Success, "unmapped demo paths must not look broken")
	assert.Equal(t, FallbackMessage, env.Message)
	assert.False(t, env.HasData())
}

func TestResolve_ReturnsDeepCopies(t *testing.T) {
	r := newFastResolver()
	ctx := context.Background()

	first, err := r.Resolve(ctx, "/ngos")
	require.NoError(t, err)

	var ngos []map[string]any
	require.NoError(t, json.Unmarshal(first.Data, &ngos))
	ngos[0]["name"] = "Mutated"
	first.Data[0] = 'X' // scribble over the raw bytes too

	second, err := r.Resolve(ctx, "/ngos")
	require.NoError(t, err)

	var fresh []map[string]any
	require.NoError(t, json.Unmarshal(second.Data, &fresh))
	assert.Equal(t, "Helping Hands Trust", fresh[0]["name"])
}

func TestResolve_DemoAuthEndpointsReturn401(t *testing.T) {
	r := newFastResolver()

	env, err := r.Resolve(context.Background(), "/admin/users")
	require.NoError(t, err)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusUnauthorized, env.Status)
}

func TestResolve_AppliesLatency(t *testing.T) {
	r := NewResolver(ResolverOptions{Latency: 60 * time.Millisecond})

	start := time.Now()
	_, err := r.Resolve(context.Background(), "/ngos")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestResolve_HonorsContextCancellation(t *testing.T) {
	r := NewResolver(ResolverOptions{Latency: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := r.Resolve(ctx, "/ngos")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestResolve_CustomTable(t *testing.T) {
	r := NewResolver(ResolverOptions{
		Latency: -1,
		Table: map[string]Endpoint{
			"/ping": {Success: true, Data: "pong"},
		},
	})

	env, err := r.Resolve(context.Background(), "/ping")
	require.NoError(t, err)

	var s string
	require.NoError(t, env.DecodeData(&s))
	assert.Equal(t, "pong", s)
}

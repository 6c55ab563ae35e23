// Package mockapi resolves requests from a local canned-response table when
// the session operates in demo mode, so the client never contacts the real
// backend.
package mockapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/careconnect/careconnect-go/internal/api"
	"github.com/careconnect/careconnect-go/internal/errors"
)

// DefaultLatency approximates network round-trip time so callers' loading
// states exercise the same code path as real requests.
const DefaultLatency = 150 * time.Millisecond

// FallbackMessage is returned for endpoints the demo table does not model.
// Unmapped paths succeed rather than error: demo mode must never appear
// broken for features it does not cover.
const FallbackMessage = "not available in demo"

// Endpoint is one canned response. Data is marshaled fresh on every
// resolution, so callers can never mutate the shared table.
type Endpoint struct {
	Status  int
	Success bool
	Message string
	Data    any
}

// ResolverOptions configure a Resolver.
type ResolverOptions struct {
	// Latency per resolution; DefaultLatency when zero, disabled when negative.
	Latency time.Duration
	// Table overrides the default endpoint table when non-nil.
	Table map[string]Endpoint
}

// Resolver maps request paths to canned envelopes.
type Resolver struct {
	latency time.Duration
	table   map[string]Endpoint
}

// NewResolver constructs a resolver from options.
func NewResolver(opts ResolverOptions) *Resolver {
	latency := opts.Latency
	if latency == 0 {
		latency = DefaultLatency
	}
	if latency < 0 {
		latency = 0
	}
	table := opts.Table
	if table == nil {
		table = DefaultTable()
	}
	return &Resolver{latency: latency, table: table}
}

// Resolve looks up the canned envelope for a path. The query string is
// stripped before matching; lookups are exact. Resolution waits the
// configured latency unless the context is canceled first.
func (r *Resolver) Resolve(ctx context.Context, path string) (*api.Envelope, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}

	ep, ok := r.table[stripQuery(path)]
	if !ok {
		return &api.Envelope{
			Success: true,
			Data:    nil,
			Message: FallbackMessage,
			Status:  http.StatusOK,
		}, nil
	}

	data, err := api.MarshalData(ep.Data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeInternal, "build demo response for %s", path)
	}

	status := ep.Status
	if status == 0 {
		status = http.StatusOK
	}
	return &api.Envelope{
		Success: ep.Success,
		Data:    data,
		Message: ep.Message,
		Status:  status,
	}, nil
}

func (r *Resolver) wait(ctx context.Context) error {
	if r.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(r.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func stripQuery(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		return path[:i]
	}
	return path
}

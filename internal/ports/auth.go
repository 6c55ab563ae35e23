package ports

// Package ports defines interfaces (hexagonal ports) for credential
// persistence and session signaling. Implementations live in
// internal/adapters; orchestration in internal/apiclient and internal/session.

import (
	"context"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
)

// CredentialStore persists the current token pair, user snapshot, and
// demo-mode flag.
//
// Get must never fail on corrupt data: an unparsable user snapshot is treated
// as absent and the store is cleared as a side effect, so the client fails
// safe to a logged-out state rather than an inconsistent authenticated one.
// Callers must re-read rather than cache results across await points; a
// concurrent call may have mutated the store.
type CredentialStore interface {
	Get(ctx context.Context) (domainauth.Credentials, error)
	Set(ctx context.Context, creds domainauth.Credentials) error
	// Clear removes all persisted credentials. Idempotent.
	Clear(ctx context.Context) error
}

// InvalidationSink receives the process-wide session-invalidated signal the
// refresh coordinator dispatches on unrecoverable refresh failure.
type InvalidationSink interface {
	Broadcast()
}

package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialStore = (*MemoryCredentialStore)(nil)
	_ ports.InvalidationSink = (*RecordingSink)(nil)
)

// MemoryCredentialStore is an in-memory credential store for unit tests.
// Error fields inject failures; counters record call traffic. Safe for
// concurrent use so it can back client tests that fire parallel requests.
type MemoryCredentialStore struct {
	mu    sync.Mutex
	creds domainauth.Credentials

	GetErr   error
	SetErr   error
	ClearErr error

	GetCalls   int
	SetCalls   int
	ClearCalls int
}

// NewMemoryCredentialStore creates an empty store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{}
}

// Seed replaces the stored credentials without counting as a Set call.
func (m *MemoryCredentialStore) Seed(creds domainauth.Credentials) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = snapshot(creds)
}

func (m *MemoryCredentialStore) Get(_ context.Context) (domainauth.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetCalls++
	if m.GetErr != nil {
		return domainauth.Credentials{}, m.GetErr
	}
	return snapshot(m.creds), nil
}

func (m *MemoryCredentialStore) Set(_ context.Context, creds domainauth.Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.SetErr != nil {
		return m.SetErr
	}
	m.creds = snapshot(creds)
	return nil
}

func (m *MemoryCredentialStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.creds = domainauth.Credentials{}
	return nil
}

// Current returns the stored credentials without touching counters.
func (m *MemoryCredentialStore) Current() domainauth.Credentials {
	m.mu.Lock()
	defer m.mu.Unlock()
	return snapshot(m.creds)
}

// snapshot deep-copies the pointer fields so callers cannot mutate stored
// state through a returned value.
func snapshot(creds domainauth.Credentials) domainauth.Credentials {
	out := domainauth.Credentials{Demo: creds.Demo}
	if creds.Tokens != nil {
		tokens := *creds.Tokens
		out.Tokens = &tokens
	}
	if creds.User != nil {
		user := *creds.User
		out.User = &user
	}
	return out
}

// RecordingSink counts invalidation broadcasts.
type RecordingSink struct {
	mu    sync.Mutex
	count int
}

func (s *RecordingSink) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
}

// Broadcasts returns how many times Broadcast was called.
func (s *RecordingSink) Broadcasts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Package memstore provides an ephemeral in-process credential store. Nothing
// survives a restart; useful for development and one-shot CLI runs.
package memstore

import (
	"context"
	"sync"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/ports"
)

// Store keeps credentials in memory. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	creds domainauth.Credentials
}

var _ ports.CredentialStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) Get(_ context.Context) (domainauth.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyCreds(s.creds), nil
}

func (s *Store) Set(_ context.Context, creds domainauth.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = copyCreds(creds)
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = domainauth.Credentials{}
	return nil
}

func copyCreds(in domainauth.Credentials) domainauth.Credentials {
	out := domainauth.Credentials{Demo: in.Demo}
	if in.Tokens != nil {
		tokens := *in.Tokens
		out.Tokens = &tokens
	}
	if in.User != nil {
		user := *in.User
		out.User = &user
	}
	return out
}

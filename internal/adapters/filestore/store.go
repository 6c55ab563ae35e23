// Package filestore persists credentials as a single JSON document on disk,
// the default backend for the CLI and desktop use.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/ports"
)

// document is the on-disk layout: the four logical credential slots. The user
// snapshot stays raw so a corrupt snapshot can be detected and dropped without
// failing the whole read.
type document struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         json.RawMessage `json:"user,omitempty"`
	Demo         bool            `json:"demo"`
}

// Store is a file-backed credential store. Writes go through a temp file and
// rename so a crash mid-write never leaves a torn document.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ ports.CredentialStore = (*Store)(nil)

// New creates a file store rooted at path. The parent directory is created on
// first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Get reads the current credentials. A missing file means logged out; a
// corrupt document or user snapshot clears the store and reports logged out.
// Get fails only on filesystem errors other than not-exist.
func (s *Store) Get(ctx context.Context) (domainauth.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domainauth.Credentials{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domainauth.Credentials{}, nil
		}
		return domainauth.Credentials{}, fmt.Errorf("read credentials file: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		if clearErr := s.clearLocked(); clearErr != nil {
			return domainauth.Credentials{}, fmt.Errorf("clear corrupt credentials file: %w", clearErr)
		}
		return domainauth.Credentials{}, nil
	}

	creds := domainauth.Credentials{Demo: doc.Demo}
	if doc.AccessToken != "" || doc.RefreshToken != "" {
		creds.Tokens = &domainauth.TokenPair{
			AccessToken:  doc.AccessToken,
			RefreshToken: doc.RefreshToken,
		}
	}

	if len(doc.User) > 0 {
		var user domainauth.UserRecord
		if unmarshalErr := json.Unmarshal(doc.User, &user); unmarshalErr != nil || user.Validate() != nil {
			if clearErr := s.clearLocked(); clearErr != nil {
				return domainauth.Credentials{}, fmt.Errorf("clear corrupt user snapshot: %w", clearErr)
			}
			return domainauth.Credentials{}, nil
		}
		creds.User = &user
	}

	return creds, nil
}

// Set atomically replaces the stored credentials.
func (s *Store) Set(ctx context.Context, creds domainauth.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	doc := document{Demo: creds.Demo}
	if creds.Tokens != nil {
		doc.AccessToken = creds.Tokens.AccessToken
		doc.RefreshToken = creds.Tokens.RefreshToken
	}
	if creds.User != nil {
		raw, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("marshal user snapshot: %w", err)
		}
		doc.User = raw
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp credentials file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp credentials file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}
	return nil
}

// Clear removes the credentials file. Idempotent.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return s.clearLocked()
}

func (s *Store) clearLocked() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}

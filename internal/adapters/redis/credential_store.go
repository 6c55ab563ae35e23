package redis

// Package redis provides a Redis-backed credential store for deployments
// where the client runs server-side (bots, schedulers) and credentials must
// survive process restarts on shared infrastructure.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
	"github.com/careconnect/careconnect-go/internal/ports"
)

// Key suffixes for the four logical credential slots.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
	keyDemo         = "demo"
)

// CredentialStore persists credentials as four prefixed keys.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
}

var _ ports.CredentialStore = (*CredentialStore)(nil)

// NewCredentialStore creates a Redis-backed credential store.
func NewCredentialStore(client redis.UniversalClient) *CredentialStore {
	return &CredentialStore{client: client, prefix: "careconnect:auth:"}
}

// NewCredentialStoreWithPrefix creates a store with a custom key prefix.
func NewCredentialStoreWithPrefix(client redis.UniversalClient, prefix string) *CredentialStore {
	return &CredentialStore{client: client, prefix: prefix}
}

func (s *CredentialStore) key(suffix string) string { return s.prefix + suffix }

// Get reads the current credentials. A corrupt user snapshot is treated as
// absent and the store is cleared as a side effect; Get fails only on
// transport errors.
func (s *CredentialStore) Get(ctx context.Context) (domainauth.Credentials, error) {
	vals, err := s.client.MGet(ctx,
		s.key(keyAccessToken),
		s.key(keyRefreshToken),
		s.key(keyUser),
		s.key(keyDemo),
	).Result()
	if err != nil {
		return domainauth.Credentials{}, fmt.Errorf("redis mget credentials: %w", err)
	}

	access := stringVal(vals[0])
	refresh := stringVal(vals[1])
	rawUser := stringVal(vals[2])
	demo := stringVal(vals[3]) == "1"

	creds := domainauth.Credentials{Demo: demo}
	if access != "" || refresh != "" {
		creds.Tokens = &domainauth.TokenPair{AccessToken: access, RefreshToken: refresh}
	}

	if rawUser != "" {
		var user domainauth.UserRecord
		if unmarshalErr := json.Unmarshal([]byte(rawUser), &user); unmarshalErr != nil || user.Validate() != nil {
			// Fail safe to logged out rather than half-authenticated.
			if clearErr := s.Clear(ctx); clearErr != nil {
				return domainauth.Credentials{}, fmt.Errorf("clear corrupt credentials: %w", clearErr)
			}
			return domainauth.Credentials{}, nil
		}
		creds.User = &user
	}

	return creds, nil
}

// Set writes all four slots atomically via a transaction pipeline.
func (s *CredentialStore) Set(ctx context.Context, creds domainauth.Credentials) error {
	var access, refresh string
	if creds.Tokens != nil {
		access = creds.Tokens.AccessToken
		refresh = creds.Tokens.RefreshToken
	}

	rawUser := []byte("")
	if creds.User != nil {
		data, err := json.Marshal(creds.User)
		if err != nil {
			return fmt.Errorf("marshal user snapshot: %w", err)
		}
		rawUser = data
	}

	demo := "0"
	if creds.Demo {
		demo = "1"
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(keyAccessToken), access, 0)
	pipe.Set(ctx, s.key(keyRefreshToken), refresh, 0)
	pipe.Set(ctx, s.key(keyUser), rawUser, 0)
	pipe.Set(ctx, s.key(keyDemo), demo, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set credentials: %w", err)
	}
	return nil
}

// Clear removes all four slots. Idempotent.
func (s *CredentialStore) Clear(ctx context.Context) error {
	err := s.client.Del(ctx,
		s.key(keyAccessToken),
		s.key(keyRefreshToken),
		s.key(keyUser),
		s.key(keyDemo),
	).Err()
	if err != nil {
		return fmt.Errorf("redis clear credentials: %w", err)
	}
	return nil
}

func stringVal(v any) string {
	s, _ := v.(string)
	return s
}

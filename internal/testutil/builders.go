package testutil

import (
	"time"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
)

// CredentialsBuilder provides a fluent interface for building Credentials for testing.
type CredentialsBuilder struct {
	creds domainauth.Credentials
}

// NewCredentials creates a CredentialsBuilder with a complete, valid session.
func NewCredentials() *CredentialsBuilder {
	return &CredentialsBuilder{
		creds: domainauth.Credentials{
			Tokens: &domainauth.TokenPair{
				AccessToken:  "test-access-token",
				RefreshToken: "test-refresh-token",
			},
			User: &domainauth.UserRecord{
				ID:        "user-123",
				Name:      "Meera Shah",
				Email:     "meera@example.com",
				Role:      domainauth.RoleDonor,
				City:      "Pune",
				CreatedAt: TestTime(),
			},
		},
	}
}

// WithTokens sets the token pair.
func (b *CredentialsBuilder) WithTokens(access, refresh string) *CredentialsBuilder {
	b.creds.Tokens = &domainauth.TokenPair{AccessToken: access, RefreshToken: refresh}
	return b
}

// WithoutTokens removes the token pair.
func (b *CredentialsBuilder) WithoutTokens() *CredentialsBuilder {
	b.creds.Tokens = nil
	return b
}

// WithUser replaces the user snapshot.
func (b *CredentialsBuilder) WithUser(user domainauth.UserRecord) *CredentialsBuilder {
	b.creds.User = &user
	return b
}

// WithoutUser removes the user snapshot.
func (b *CredentialsBuilder) WithoutUser() *CredentialsBuilder {
	b.creds.User = nil
	return b
}

// WithRole sets the user's role.
func (b *CredentialsBuilder) WithRole(role domainauth.Role) *CredentialsBuilder {
	if b.creds.User != nil {
		b.creds.User.Role = role
	}
	return b
}

// AsDemo replaces the tokens with freshly issued demo tokens for the current
// user and sets the demo flag.
func (b *CredentialsBuilder) AsDemo(now time.Time) *CredentialsBuilder {
	if b.creds.User != nil {
		if pair, err := domainauth.IssueDemoTokens(*b.creds.User, now); err == nil {
			b.creds.Tokens = &pair
		}
	}
	b.creds.Demo = true
	return b
}

// Build returns the constructed Credentials.
func (b *CredentialsBuilder) Build() domainauth.Credentials {
	return b.creds
}

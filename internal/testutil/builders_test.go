package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/careconnect/careconnect-go/internal/domain/auth"
)

func TestCredentialsBuilder_Defaults(t *testing.T) {
	creds := NewCredentials().Build()
	assert.True(t, creds.Authenticated())
	assert.False(t, creds.Demo)
}

func TestCredentialsBuilder_Variations(t *testing.T) {
	noTokens := NewCredentials().WithoutTokens().Build()
	assert.False(t, noTokens.Authenticated())

	admin := NewCredentials().WithRole(domainauth.RoleAdmin).Build()
	require.NotNil(t, admin.User)
	assert.Equal(t, domainauth.RoleAdmin, admin.User.Role)

	demo := NewCredentials().AsDemo(TestTime()).Build()
	assert.True(t, demo.DemoSession())
}

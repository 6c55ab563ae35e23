package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Role
		wantErr bool
	}{
		{name: "donor", in: "donor", want: RoleDonor},
		{name: "mixed case with spaces", in: "  NGO_Admin ", want: RoleNGOAdmin},
		{name: "ngo manager", in: "ngo_manager", want: RoleNGOManager},
		{name: "unknown", in: "superuser", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRecord_Validate(t *testing.T) {
	valid := UserRecord{ID: "u-1", Name: "Meera", Email: "meera@example.com", Role: RoleDonor}
	require.NoError(t, valid.Validate())

	missingID := valid
	missingID.ID = ""
	assert.Error(t, missingID.Validate())

	missingEmail := valid
	missingEmail.Email = ""
	assert.Error(t, missingEmail.Validate())

	badRole := valid
	badRole.Role = "superuser"
	assert.Error(t, badRole.Validate())
}

func TestUserRecord_MergeDoesNotMutateReceiver(t *testing.T) {
	orig := UserRecord{ID: "u-1", Name: "Meera", Email: "meera@example.com", Role: RoleDonor, City: "Pune"}

	name := "Meera S"
	city := "Nashik"
	merged := orig.Merge(UserUpdate{Name: &name, City: &city})

	assert.Equal(t, "Meera S", merged.Name)
	assert.Equal(t, "Nashik", merged.City)
	assert.Equal(t, orig.Email, merged.Email)

	// Receiver untouched.
	assert.Equal(t, "Meera", orig.Name)
	assert.Equal(t, "Pune", orig.City)
}

func TestUserUpdate_Empty(t *testing.T) {
	assert.True(t, UserUpdate{}.Empty())
	name := "x"
	assert.False(t, UserUpdate{Name: &name}.Empty())
}

func TestCredentials_Authenticated(t *testing.T) {
	user := &UserRecord{ID: "u-1", Email: "u@example.com", Role: RoleCitizen, CreatedAt: time.Now()}
	pair := &TokenPair{AccessToken: "a", RefreshToken: "r"}

	assert.True(t, Credentials{Tokens: pair, User: user}.Authenticated())
	assert.False(t, Credentials{Tokens: pair}.Authenticated())
	assert.False(t, Credentials{User: user}.Authenticated())
	assert.False(t, Credentials{Tokens: &TokenPair{AccessToken: "a"}, User: user}.Authenticated())

	badUser := *user
	badUser.Role = "nope"
	assert.False(t, Credentials{Tokens: pair, User: &badUser}.Authenticated())
}

func TestCredentials_DemoSessionRequiresDemoToken(t *testing.T) {
	user, ok := LookupDemoIdentity("donor@example.com")
	require.True(t, ok)

	pair, err := IssueDemoTokens(user, time.Now())
	require.NoError(t, err)

	assert.True(t, Credentials{Tokens: &pair, User: &user, Demo: true}.DemoSession())
	// Flag set but token is opaque: not a demo session.
	assert.False(t, Credentials{Tokens: &TokenPair{AccessToken: "opaque", RefreshToken: "opaque"}, Demo: true}.DemoSession())
	// Demo token but flag cleared: not a demo session.
	assert.False(t, Credentials{Tokens: &pair, User: &user}.DemoSession())
}

package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of transport/adapter concerns.

import (
	"fmt"
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and JSON payloads.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleNGO        Role = "ngo"
	RoleNGOAdmin   Role = "ngo_admin"
	RoleNGOManager Role = "ngo_manager"
	RoleVolunteer  Role = "volunteer"
	RoleDonor      Role = "donor"
	RoleCitizen    Role = "citizen"
)

// Valid reports whether the role is one of the platform roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleNGO, RoleNGOAdmin, RoleNGOManager, RoleVolunteer, RoleDonor, RoleCitizen:
		return true
	}
	return false
}

// ParseRole converts a string into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// UserRecord is the client-side snapshot of the authenticated user.
// It mirrors the user object returned by the login/register endpoints and is
// persisted alongside the token pair by the credential store.
type UserRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	City      string    `json:"city,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks the fields the client relies on before trusting a snapshot.
func (u UserRecord) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user record missing id")
	}
	if u.Email == "" {
		return fmt.Errorf("user record missing email")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("user record has unknown role %q", u.Role)
	}
	return nil
}

// Merge applies non-nil fields of the update to a copy of the record and
// returns it. The receiver is never mutated.
func (u UserRecord) Merge(upd UserUpdate) UserRecord {
	out := u
	if upd.Name != nil {
		out.Name = *upd.Name
	}
	if upd.Avatar != nil {
		out.Avatar = *upd.Avatar
	}
	if upd.City != nil {
		out.City = *upd.City
	}
	return out
}

// UserUpdate carries a partial profile update. Nil fields are left unchanged.
type UserUpdate struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	City   *string `json:"city,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Avatar == nil && u.City == nil
}

// TokenPair holds the access/refresh tokens issued on successful
// authentication. Real tokens are opaque to the client; demo tokens are
// unsigned self-describing envelopes (see demo.go).
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether both halves of the pair are present.
func (t TokenPair) Complete() bool {
	return t.AccessToken != "" && t.RefreshToken != ""
}

// Credentials is the logical content of the credential store: the current
// token pair, user snapshot, and demo-mode flag.
type Credentials struct {
	Tokens *TokenPair  `json:"tokens,omitempty"`
	User   *UserRecord `json:"user,omitempty"`
	Demo   bool        `json:"demo"`
}

// Authenticated reports whether the credentials describe a usable session:
// a complete token pair plus a valid user snapshot.
func (c Credentials) Authenticated() bool {
	return c.Tokens != nil && c.Tokens.Complete() &&
		c.User != nil && c.User.Validate() == nil
}

// DemoSession reports whether the credentials describe an offline demo
// session. The flag alone is not trusted: the stored access token must
// actually be a demo token.
func (c Credentials) DemoSession() bool {
	return c.Demo && c.Tokens != nil && IsDemoToken(c.Tokens.AccessToken)
}

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Demo mode never contacts the backend, so demo tokens carry their own
// identity: unsigned JWTs (alg=none) encoding user id, role, email, issuance
// and expiry. They are reversible but carry no signature; nothing server-side
// ever accepts them.

// DemoPassword is the fixed password shared by all demo identities.
const DemoPassword = "password123"

const (
	demoAccessValidity  = time.Hour
	demoRefreshValidity = 7 * 24 * time.Hour
)

// demoIdentities maps demo login emails to their canned user records.
// One identity per headline role so every dashboard variant can be explored
// offline.
var demoIdentities = map[string]UserRecord{
	"admin@example.com": {
		ID:    "demo-admin-0001",
		Name:  "Asha Verma",
		Email: "admin@example.com",
		Role:  RoleAdmin,
		City:  "Delhi",
	},
	"ngo@example.com": {
		ID:    "demo-ngo-0001",
		Name:  "Helping Hands Trust",
		Email: "ngo@example.com",
		Role:  RoleNGO,
		City:  "Mumbai",
	},
	"volunteer@example.com": {
		ID:    "demo-volunteer-0001",
		Name:  "Ravi Iyer",
		Email: "volunteer@example.com",
		Role:  RoleVolunteer,
		City:  "Bengaluru",
	},
	"donor@example.com": {
		ID:    "demo-donor-0001",
		Name:  "Meera Shah",
		Email: "donor@example.com",
		Role:  RoleDonor,
		City:  "Pune",
	},
	"citizen@example.com": {
		ID:    "demo-citizen-0001",
		Name:  "Arjun Nair",
		Email: "citizen@example.com",
		Role:  RoleCitizen,
		City:  "Kochi",
	},
}

// LookupDemoIdentity returns the canned user record for a demo email.
func LookupDemoIdentity(email string) (UserRecord, bool) {
	u, ok := demoIdentities[email]
	return u, ok
}

// DemoClaims is the decoded content of a demo token.
type DemoClaims struct {
	UserID    string
	Email     string
	Role      Role
	TokenUse  string // "access" or "refresh"
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IssueDemoTokens mints an unsigned access/refresh pair for a demo identity.
func IssueDemoTokens(user UserRecord, now time.Time) (TokenPair, error) {
	access, err := signDemoToken(user, now, "access", demoAccessValidity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue demo access token: %w", err)
	}
	refresh, err := signDemoToken(user, now, "refresh", demoRefreshValidity)
	if err != nil {
		return TokenPair{}, fmt.Errorf("issue demo refresh token: %w", err)
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func signDemoToken(user UserRecord, now time.Time, use string, validity time.Duration) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"use":   use,
		"iat":   now.Unix(),
		"exp":   now.Add(validity).Unix(),
	})
	return tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
}

// IsDemoToken reports whether the raw token is a demo token: a structurally
// valid JWT whose alg header is "none". Opaque backend tokens and garbage both
// return false.
func IsDemoToken(raw string) bool {
	if raw == "" {
		return false
	}
	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return false
	}
	return tok.Method.Alg() == jwt.SigningMethodNone.Alg()
}

// DecodeDemoToken reverses IssueDemoTokens without any signature check.
// Expiry is decoded but not enforced here; callers decide what stale means.
func DecodeDemoToken(raw string) (DemoClaims, error) {
	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return DemoClaims{}, fmt.Errorf("parse demo token: %w", err)
	}
	if tok.Method.Alg() != jwt.SigningMethodNone.Alg() {
		return DemoClaims{}, errors.New("not a demo token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return DemoClaims{}, errors.New("unexpected demo token claims shape")
	}

	out := DemoClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = Role(role)
	}
	if use, ok := claims["use"].(string); ok {
		out.TokenUse = use
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if out.UserID == "" {
		return DemoClaims{}, errors.New("demo token missing subject")
	}
	return out, nil
}

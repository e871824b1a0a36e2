package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the default lifetime for access tokens.
// Short-lived so stale membership lists age out quickly; clients re-mint via
// the context-refresh endpoint after membership changes.
const DefaultAccessTokenTTL = 15 * time.Minute

// MembershipClaim summarises one team membership inside a token. The full
// list is embedded as a single structured claim so that one signature
// verification yields the caller's complete authorization picture without a
// further lookup.
type MembershipClaim struct {
	TeamID     string `json:"team_id"`
	Role       string `json:"role"`
	MemberType string `json:"member_type,omitempty"`
}

// Claims are the identity claims carried by every access token. Treated as
// immutable once verified; additive changes only to preserve compatibility.
type Claims struct {
	jwt.RegisteredClaims

	// Email address the account is registered under
	Email string `json:"email,omitempty"`

	// Display name components
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`

	// PlatformAdmin bypasses all team-scoped authorization checks.
	// Orthogonal to the role held in any team.
	PlatformAdmin bool `json:"platform_admin,omitempty"`

	// Memberships lists every active team membership held at mint time.
	Memberships []MembershipClaim `json:"memberships,omitempty"`
}

// NewIdentityClaims builds minimally-correct claims for a user.
func NewIdentityClaims(
	subject, email, firstName, lastName string,
	platformAdmin bool,
	memberships []MembershipClaim,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings(audience),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:         email,
		FirstName:     firstName,
		LastName:      lastName,
		PlatformAdmin: platformAdmin,
		Memberships:   memberships,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// MembershipFor returns the membership summary for the given team, if the
// token carries one.
func (c *Claims) MembershipFor(teamID string) (MembershipClaim, bool) {
	for _, m := range c.Memberships {
		if m.TeamID == teamID {
			return m, true
		}
	}
	return MembershipClaim{}, false
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}

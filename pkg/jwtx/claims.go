package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type markers carried in the "typ" claim so an access token can
// never be replayed as a refresh token or vice versa.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Default token TTLs. Access tokens stay short-lived; refresh lifetime
// depends on the member's auto-login preference.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the session-bound refresh lifetime used
	// when a member declines auto-login.
	DefaultRefreshTokenTTL = 24 * time.Hour

	// DefaultAutoLoginRefreshTTL is the extended refresh lifetime for
	// members who opted into auto-login.
	DefaultAutoLoginRefreshTTL = 14 * 24 * time.Hour
)

// Claims are the token claims shared by access and refresh tokens. The
// subject is always the member id.
type Claims struct {
	jwt.RegisteredClaims

	// Typ marks the token kind: "access" or "refresh".
	Typ string `json:"typ,omitempty"`

	// Role is the member's granted authority ("user", "admin").
	// Only set on access tokens; refresh tokens carry identity only.
	Role string `json:"role,omitempty"`
}

// NewAccessClaims builds claims for a short-lived access token.
func NewAccessClaims(memberID, role, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   memberID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Typ:  TokenTypeAccess,
		Role: role,
	}
}

// NewRefreshClaims builds claims for a refresh token. tokenID doubles as
// the key of the persisted refresh record, so rotation can find and
// invalidate the lineage server-side.
func NewRefreshClaims(memberID, tokenID, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   memberID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        tokenID,
		},
		Typ: TokenTypeRefresh,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer claim against the expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used
// before it becomes valid (nbf).
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

// RequireType rejects claims whose "typ" marker differs from want.
func (c *Claims) RequireType(want string) error {
	if c.Typ != want {
		return ErrTokenType
	}
	return nil
}

package domain

import "time"

// TokenPair is what a successful login or reissue returns: the short-lived
// access token and the rotating refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until access token expiry
}

// RefreshToken models the stored refresh token record in the DB. The record
// is keyed by the JWT's jti claim; the token string itself is never stored.
type RefreshToken struct {
	ID        string // jti of the refresh JWT
	MemberID  string
	UserAgent string // client binding captured at login
	AutoLogin bool   // long-lived session requested at login
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActivationToken is the single-use email verification secret. Only the
// SHA-256 fingerprint of the mailed token is stored.
type ActivationToken struct {
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	MemberID  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Package authapi defines the wire types of the auth HTTP API: request and
// response bodies plus the structured error envelope every failure is
// translated into at the boundary.
package authapi

import (
	"time"

	"github.com/recipic-shop/recipic/pkg/jwtx"
)

// SignupRequest creates an immediately active member (no email round-trip).
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// RegisterRequest creates a pending member and triggers the activation email.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// ResendActivationRequest requests a fresh activation email for a pending
// member.
type ResendActivationRequest struct {
	Email string `json:"email"`
}

// ActivateRequest consumes a single-use activation token.
type ActivateRequest struct {
	Token string `json:"token"`
}

// LoginRequest authenticates a member with email/password credentials.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	AutoLogin bool   `json:"auto_login"`
}

// ReissueRequest rotates a refresh token into a fresh token pair.
type ReissueRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes the presented refresh token lineage.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UpdateProfileRequest mutates the caller's nickname and photo.
type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
	PhotoURL string `json:"photo_url"`
}

// ChangePasswordRequest swaps the caller's password after re-verifying the
// current one.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// TokenResponse carries a freshly issued token pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "Bearer"
	ExpiresIn    int    `json:"expires_in"` // access token lifetime in seconds
}

// MemberResponse is the public view of a member record.
type MemberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Role      string    `json:"role"`
	Activated bool      `json:"activated"`
	Provider  string    `json:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CheckEmailResponse reports whether an email is already registered.
type CheckEmailResponse struct {
	Exists bool `json:"exists"`
}

// AutoLoginResponse reports the auto-login flag of a refresh lineage.
type AutoLoginResponse struct {
	AutoLogin bool `json:"auto_login"`
}

// HealthResponse is returned by the livez/readyz probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks itemizes dependency status for the readiness probe.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the published JSON Web Key Set.
type JWKSResponse = jwtx.JWKS

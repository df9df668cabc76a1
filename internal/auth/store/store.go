package store

import (
	"context"
	"errors"

	"github.com/recipic-shop/recipic/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and to actively stop people from accidentally doing transactions
// within transactions.
type Store interface {
	Members() Members
	Activations() Activations
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// Use it for multi-step operations that must be atomic (e.g., refresh rotation).
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// This is the recommended way to handle transactions as it automatically
	// handles commit/rollback logic.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources (optional for sqlite).
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Members interface {
	// GetMemberByID returns a member by id.
	GetMemberByID(ctx context.Context, id string) (domain.Member, error)

	// GetMemberByEmail is used during credential login and duplicate checks.
	GetMemberByEmail(ctx context.Context, email string) (domain.Member, error)

	// EmailExists reports whether any member has the given email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// CreateMember inserts a new member (id is provided by app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateMember(ctx context.Context, m domain.Member) error

	// ActivateMember flips activated=1 and bumps updated_at.
	ActivateMember(ctx context.Context, memberID string) error

	// UpdateProfile mutates nickname and photo_url and bumps updated_at.
	UpdateProfile(ctx context.Context, memberID, nickname, photoURL string) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, memberID string, newHash string) error

	// DeleteMember cascades to refresh_tokens and activation_tokens (per schema).
	DeleteMember(ctx context.Context, memberID string) error
}

type Activations interface {
	// CreateActivationToken stores the fingerprint of a freshly mailed token.
	// Replaces any previous pending token for the same member.
	CreateActivationToken(ctx context.Context, t domain.ActivationToken) error

	// GetActivationTokenByHash returns the record by its fingerprint.
	GetActivationTokenByHash(ctx context.Context, hash string) (domain.ActivationToken, error)

	// DeleteActivationToken removes a consumed token by its fingerprint.
	// Returns ErrNotFound when the token was already consumed, so a
	// transaction can enforce single use.
	DeleteActivationToken(ctx context.Context, hash string) error

	// DeleteExpiredActivationTokens is housekeeping.
	DeleteExpiredActivationTokens(ctx context.Context) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record keyed by jti.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshToken returns the record for a jti.
	GetRefreshToken(ctx context.Context, id string) (domain.RefreshToken, error)

	// RevokeRefreshToken flips revoked=1 for an active token owned by the
	// member and sets updated_at. Returns ErrNotFound when the token does
	// not exist, belongs to someone else, or was already revoked; rotation
	// relies on that to guarantee a token is redeemed at most once.
	RevokeRefreshToken(ctx context.Context, id, memberID string) error

	// RevokeAllMemberRefreshTokens bulk revocation for a member (e.g., password reset).
	RevokeAllMemberRefreshTokens(ctx context.Context, memberID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

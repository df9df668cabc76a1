package sqlite

import (
	"context"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/domain"
)

type activationsRepo struct {
	db dbtx
}

func (r *activationsRepo) CreateActivationToken(ctx context.Context, t domain.ActivationToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	// A member has at most one pending activation; a re-send replaces it.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM activation_tokens WHERE member_id = ?`, t.MemberID); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activation_tokens (token_hash, member_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		t.TokenHash, t.MemberID, t.ExpiresAt, t.CreatedAt)
	return err
}

func (r *activationsRepo) GetActivationTokenByHash(ctx context.Context, hash string) (domain.ActivationToken, error) {
	var t domain.ActivationToken
	err := r.db.QueryRowContext(ctx,
		`SELECT token_hash, member_id, expires_at, created_at FROM activation_tokens WHERE token_hash = ?`,
		hash).Scan(&t.TokenHash, &t.MemberID, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return domain.ActivationToken{}, mapNotFound(err)
	}
	return t, nil
}

func (r *activationsRepo) DeleteActivationToken(ctx context.Context, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM activation_tokens WHERE token_hash = ?`, hash)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *activationsRepo) DeleteExpiredActivationTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM activation_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}

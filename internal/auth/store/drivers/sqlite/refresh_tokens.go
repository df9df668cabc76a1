package sqlite

import (
	"context"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/domain"
)

type refreshTokensRepo struct {
	db dbtx
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, member_id, user_agent, auto_login, expires_at, revoked, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.MemberID, t.UserAgent, t.AutoLogin, t.ExpiresAt, t.Revoked, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *refreshTokensRepo) GetRefreshToken(ctx context.Context, id string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx,
		`SELECT id, member_id, user_agent, auto_login, expires_at, revoked, created_at, updated_at
		 FROM refresh_tokens WHERE id = ?`, id).
		Scan(&t.ID, &t.MemberID, &t.UserAgent, &t.AutoLogin, &t.ExpiresAt, &t.Revoked, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}
	return t, nil
}

// RevokeRefreshToken is the guarded write behind refresh rotation: only an
// existing, unrevoked token owned by memberID flips to revoked. Zero rows
// affected means some other caller already redeemed it.
func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, id, memberID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ?
		 WHERE id = ? AND member_id = ? AND revoked = 0`,
		time.Now().UTC(), id, memberID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *refreshTokensRepo) RevokeAllMemberRefreshTokens(ctx context.Context, memberID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, updated_at = ? WHERE member_id = ? AND revoked = 0`,
		time.Now().UTC(), memberID)
	return err
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE expires_at < ?`, time.Now().UTC())
	return err
}

package sqlite

import (
	"context"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/internal/auth/store"
)

type membersRepo struct {
	db dbtx
}

const memberColumns = `id, email, password_hash, nickname, photo_url, role, provider, activated, created_at, updated_at`

func scanMember(row interface{ Scan(...any) error }) (domain.Member, error) {
	var m domain.Member
	err := row.Scan(
		&m.ID, &m.Email, &m.PasswordHash, &m.Nickname, &m.PhotoURL,
		&m.Role, &m.Provider, &m.Activated, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return domain.Member{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membersRepo) GetMemberByID(ctx context.Context, id string) (domain.Member, error) {
	return scanMember(r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
}

func (r *membersRepo) GetMemberByEmail(ctx context.Context, email string) (domain.Member, error) {
	return scanMember(r.db.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE email = ?`, email))
}

func (r *membersRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM members WHERE email = ?`, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *membersRepo) CreateMember(ctx context.Context, m domain.Member) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO members (`+memberColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Email, m.PasswordHash, m.Nickname, m.PhotoURL,
		m.Role, m.Provider, m.Activated, m.CreatedAt, m.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *membersRepo) ActivateMember(ctx context.Context, memberID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET activated = 1, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), memberID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *membersRepo) UpdateProfile(ctx context.Context, memberID, nickname, photoURL string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET nickname = ?, photo_url = ?, updated_at = ? WHERE id = ?`,
		nickname, photoURL, time.Now().UTC(), memberID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *membersRepo) UpdatePasswordHash(ctx context.Context, memberID string, newHash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE members SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), memberID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

func (r *membersRepo) DeleteMember(ctx context.Context, memberID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, memberID)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/internal/auth/mail"
	"github.com/recipic-shop/recipic/internal/auth/store"
	"github.com/recipic-shop/recipic/pkg/cryptox"
	"github.com/recipic-shop/recipic/pkg/idx"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

// DefaultActivationTTL is how long a mailed activation link stays valid.
const DefaultActivationTTL = 30 * time.Minute

// AuthService orchestrates the account lifecycle: signup, registration
// with email activation, credential login and session management.
type AuthService struct {
	Store         store.Store
	Tokens        *TokenService
	Authn         *Authenticator
	Mailer        mail.Mailer
	ActivationTTL time.Duration
}

// activationTTL returns the configured window; only zero means unset.
func (s *AuthService) activationTTL() time.Duration {
	if s.ActivationTTL != 0 {
		return s.ActivationTTL
	}
	return DefaultActivationTTL
}

// CheckEmail reports whether an email is still available for signup.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	exists, err := s.Store.Members().EmailExists(ctx, email)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// Signup creates a member that can log in immediately, without email
// verification. Kept for trusted channels (admin tooling, fixtures); the
// public flow is RegisterUser.
func (s *AuthService) Signup(ctx context.Context, email, password, nickname string) (domain.Member, error) {
	return s.createMember(ctx, email, password, nickname, true)
}

// RegisterUser creates a pending member and mails an activation link. The
// member row commits first; activation issue and mail delivery follow, and
// their failure doesn't undo the registration (the member can request a
// re-send).
func (s *AuthService) RegisterUser(ctx context.Context, email, password, nickname string) (domain.Member, error) {
	member, err := s.createMember(ctx, email, password, nickname, false)
	if err != nil {
		return domain.Member{}, err
	}

	if err := s.issueActivation(ctx, member); err != nil {
		slogx.FromContext(ctx).Error("activation email failed", "member_id", member.ID, "err", err)
	}
	return member, nil
}

// ResendActivation mails a fresh activation link for a pending member,
// replacing any earlier pending token.
func (s *AuthService) ResendActivation(ctx context.Context, email string) error {
	member, err := s.Store.Members().GetMemberByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotRegistered
		}
		return err
	}
	if member.Activated {
		return nil // nothing to do; don't leak account state
	}
	return s.issueActivation(ctx, member)
}

func (s *AuthService) createMember(ctx context.Context, email, password, nickname string, activated bool) (domain.Member, error) {
	email = normalizeEmail(email)

	// Early duplicate check keeps the common failure cheap; the unique
	// index still backstops races.
	exists, err := s.Store.Members().EmailExists(ctx, email)
	if err != nil {
		return domain.Member{}, err
	}
	if exists {
		return domain.Member{}, ErrDuplicateEmail
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Member{}, err
	}

	member := domain.Member{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Nickname:     nickname,
		Role:         domain.RoleMember,
		Provider:     domain.ProviderLocal,
		Activated:    activated,
	}
	if err := s.Store.Members().CreateMember(ctx, member); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Member{}, ErrDuplicateEmail
		}
		return domain.Member{}, err
	}
	return member, nil
}

func (s *AuthService) issueActivation(ctx context.Context, member domain.Member) error {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return err
	}

	record := domain.ActivationToken{
		TokenHash: cryptox.FingerprintToken(token),
		MemberID:  member.ID,
		ExpiresAt: time.Now().Add(s.activationTTL()),
	}
	if err := s.Store.Activations().CreateActivationToken(ctx, record); err != nil {
		return err
	}

	return s.Mailer.SendActivationEmail(ctx, member.Email, token)
}

// ActivateUser consumes an activation token and flips the member active.
// The guarded delete inside the transaction makes the token single-use:
// only the deleting caller proceeds to activation.
func (s *AuthService) ActivateUser(ctx context.Context, token string) error {
	hash := cryptox.FingerprintToken(strings.TrimSpace(token))
	now := time.Now()

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		record, err := tx.Activations().GetActivationTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidActivationToken
			}
			return err
		}
		if now.After(record.ExpiresAt) {
			return ErrExpiredActivationToken
		}

		if err := tx.Activations().DeleteActivationToken(ctx, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidActivationToken
			}
			return err
		}

		return tx.Members().ActivateMember(ctx, record.MemberID)
	})
}

// Login authenticates credentials and issues a token pair bound to the
// caller's User-Agent. The member is re-fetched after authentication so a
// concurrently deleted account can't get tokens.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string, autoLogin bool) (*domain.TokenPair, error) {
	principal, err := s.Authn.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if _, err := s.Store.Members().GetMemberByID(ctx, principal.MemberID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, err
	}

	pair, err := s.Tokens.GenerateTokenPair(ctx, principal, userAgent, autoLogin)
	if err != nil {
		return nil, err
	}

	slogx.FromContext(ctx).Info("login succeeded", "member_id", principal.MemberID, "auto_login", autoLogin)
	return pair, nil
}

// Reissue rotates a refresh token into a new pair.
func (s *AuthService) Reissue(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	return s.Tokens.RotateRefreshToken(ctx, refreshToken)
}

// IsAutoLogin reports the auto-login preference bound to a refresh token.
func (s *AuthService) IsAutoLogin(ctx context.Context, refreshToken string) (bool, error) {
	return s.Tokens.IsAutoLogin(ctx, refreshToken)
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.Tokens.Revoke(ctx, refreshToken)
}

// GetMember returns a member's profile.
func (s *AuthService) GetMember(ctx context.Context, memberID string) (domain.Member, error) {
	member, err := s.Store.Members().GetMemberByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	return member, nil
}

// UpdateProfile changes a member's nickname and photo and returns the
// updated record.
func (s *AuthService) UpdateProfile(ctx context.Context, memberID, nickname, photoURL string) (domain.Member, error) {
	if err := s.Store.Members().UpdateProfile(ctx, memberID, nickname, photoURL); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Member{}, ErrMemberNotFound
		}
		return domain.Member{}, err
	}
	return s.GetMember(ctx, memberID)
}

// ChangePassword verifies the current password, installs the new hash and
// revokes every outstanding refresh token, so sessions minted under the old
// credential die with it.
func (s *AuthService) ChangePassword(ctx context.Context, memberID, currentPassword, newPassword string) error {
	member, err := s.GetMember(ctx, memberID)
	if err != nil {
		return err
	}
	if err := cryptox.VerifyPassword(currentPassword, member.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Store.Members().UpdatePasswordHash(ctx, memberID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("password changed, revoking sessions", "member_id", memberID)
	return s.Tokens.RevokeAllForMember(ctx, memberID)
}

// DeleteAccount removes the member; the schema cascades to their activation
// and refresh token rows.
func (s *AuthService) DeleteAccount(ctx context.Context, memberID string) error {
	err := s.Store.Members().DeleteMember(ctx, memberID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrMemberNotFound
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/internal/auth/store"
	"github.com/recipic-shop/recipic/pkg/idx"
	"github.com/recipic-shop/recipic/pkg/jwtx"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

// TokenService issues and rotates the access/refresh token pair. Access
// tokens are stateless; refresh tokens are signed JWTs whose jti keys a
// persisted record so rotation and logout can invalidate a lineage
// server-side.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Store    store.Store
	Issuer   string

	AccessTTL           time.Duration
	RefreshTTL          time.Duration // session-bound refresh lifetime
	AutoLoginRefreshTTL time.Duration // extended lifetime when auto-login is requested
}

// GenerateAccessToken signs a short-lived access token for the principal.
func (s *TokenService) GenerateAccessToken(p domain.Principal) (string, error) {
	claims := jwtx.NewAccessClaims(p.MemberID, p.Role, s.Issuer, s.AccessTTL, time.Now())
	return s.Signer.Sign(claims)
}

// GenerateTokenPair signs a fresh access/refresh pair and persists the
// refresh record. The record is bound to the caller's User-Agent and
// remembers the auto-login preference so reissued tokens inherit it.
func (s *TokenService) GenerateTokenPair(
	ctx context.Context,
	p domain.Principal,
	userAgent string,
	autoLogin bool,
) (*domain.TokenPair, error) {
	now := time.Now()

	accessToken, err := s.GenerateAccessToken(p)
	if err != nil {
		return nil, err
	}

	refreshTTL := s.RefreshTTL
	if autoLogin {
		refreshTTL = s.AutoLoginRefreshTTL
	}

	tokenID := idx.New().String()
	refreshToken, err := s.Signer.Sign(jwtx.NewRefreshClaims(p.MemberID, tokenID, s.Issuer, refreshTTL, now))
	if err != nil {
		return nil, err
	}

	record := domain.RefreshToken{
		ID:        tokenID,
		MemberID:  p.MemberID,
		UserAgent: userAgent,
		AutoLogin: autoLogin,
		ExpiresAt: now.Add(refreshTTL),
		Revoked:   false,
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, record); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// ValidateAndDecode verifies a token's signature, issuer, expiry and type
// marker, and returns its claims. All verification failures collapse to
// ErrInvalidToken for callers; the underlying cause stays in logs.
func (s *TokenService) ValidateAndDecode(ctx context.Context, tokenStr, typ string) (jwtx.Claims, error) {
	claims, err := s.Verifier.Verify(tokenStr)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			slogx.FromContext(ctx).Debug("token expired")
		} else {
			slogx.FromContext(ctx).Debug("token verification failed", "err", err)
		}
		return jwtx.Claims{}, ErrInvalidToken
	}
	if err := claims.RequireType(typ); err != nil {
		return jwtx.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// RotateRefreshToken redeems a refresh token for a new pair. The old
// record is revoked and a replacement persisted in one transaction; the
// guarded revoke ensures a token redeemed concurrently wins at most once.
// The replacement inherits the original User-Agent binding and auto-login
// preference.
func (s *TokenService) RotateRefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	now := time.Now()

	claims, err := s.ValidateAndDecode(ctx, refreshToken, jwtx.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	var result *domain.TokenPair

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		record, err := tx.RefreshTokens().GetRefreshToken(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}
		if record.MemberID != claims.Subject {
			return ErrInvalidToken
		}
		if record.Revoked || now.After(record.ExpiresAt) {
			return ErrInvalidToken
		}

		member, err := tx.Members().GetMemberByID(ctx, record.MemberID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		// Guarded update: zero rows means another caller already rotated
		// this token.
		if err := tx.RefreshTokens().RevokeRefreshToken(ctx, record.ID, record.MemberID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidToken
			}
			return err
		}

		p := member.Principal()
		accessToken, err := s.GenerateAccessToken(p)
		if err != nil {
			return err
		}

		refreshTTL := s.RefreshTTL
		if record.AutoLogin {
			refreshTTL = s.AutoLoginRefreshTTL
		}

		newID := idx.New().String()
		newRefresh, err := s.Signer.Sign(jwtx.NewRefreshClaims(p.MemberID, newID, s.Issuer, refreshTTL, now))
		if err != nil {
			return err
		}

		if err := tx.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
			ID:        newID,
			MemberID:  p.MemberID,
			UserAgent: record.UserAgent,
			AutoLogin: record.AutoLogin,
			ExpiresAt: now.Add(refreshTTL),
		}); err != nil {
			return err
		}

		result = &domain.TokenPair{
			AccessToken:  accessToken,
			RefreshToken: newRefresh,
			TokenType:    "Bearer",
			ExpiresIn:    s.AccessTTL,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// IsAutoLogin reports whether the refresh token was issued for an
// auto-login session.
func (s *TokenService) IsAutoLogin(ctx context.Context, refreshToken string) (bool, error) {
	claims, err := s.ValidateAndDecode(ctx, refreshToken, jwtx.TokenTypeRefresh)
	if err != nil {
		return false, err
	}

	record, err := s.Store.RefreshTokens().GetRefreshToken(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, ErrInvalidToken
		}
		return false, err
	}
	if record.MemberID != claims.Subject || record.Revoked {
		return false, ErrInvalidToken
	}
	return record.AutoLogin, nil
}

// Revoke invalidates a single refresh token (logout).
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) error {
	claims, err := s.ValidateAndDecode(ctx, refreshToken, jwtx.TokenTypeRefresh)
	if err != nil {
		return err
	}

	err = s.Store.RefreshTokens().RevokeRefreshToken(ctx, claims.ID, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return ErrInvalidToken
	}
	return err
}

// RevokeAllForMember invalidates every active session a member holds.
// Used after password changes.
func (s *TokenService) RevokeAllForMember(ctx context.Context, memberID string) error {
	return s.Store.RefreshTokens().RevokeAllMemberRefreshTokens(ctx, memberID)
}

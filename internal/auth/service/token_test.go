package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/pkg/idx"
	"github.com/recipic-shop/recipic/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func seedMember(t *testing.T, svc *TokenService) domain.Member {
	t.Helper()

	m := domain.Member{
		ID:           idx.New().String(),
		Email:        idx.New().String() + "@example.com",
		PasswordHash: "$argon2id$fake",
		Nickname:     "tester",
		Role:         domain.RoleMember,
		Provider:     domain.ProviderLocal,
		Activated:    true,
	}
	require.NoError(t, svc.Store.Members().CreateMember(context.Background(), m))
	return m
}

func TestGenerateTokenPair(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t, newTestStore(t))
	m := seedMember(t, svc)

	pair, err := svc.GenerateTokenPair(ctx, m.Principal(), "test-agent", false)
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)

	t.Run("access token round-trips", func(t *testing.T) {
		claims, err := svc.ValidateAndDecode(ctx, pair.AccessToken, jwtx.TokenTypeAccess)
		require.NoError(t, err)
		require.Equal(t, m.ID, claims.Subject)
		require.Equal(t, domain.RoleMember, claims.Role)
	})

	t.Run("refresh token is persisted by jti", func(t *testing.T) {
		claims, err := svc.ValidateAndDecode(ctx, pair.RefreshToken, jwtx.TokenTypeRefresh)
		require.NoError(t, err)

		record, err := svc.Store.RefreshTokens().GetRefreshToken(ctx, claims.ID)
		require.NoError(t, err)
		require.Equal(t, m.ID, record.MemberID)
		require.Equal(t, "test-agent", record.UserAgent)
		require.False(t, record.AutoLogin)
	})

	t.Run("token types are not interchangeable", func(t *testing.T) {
		_, err := svc.ValidateAndDecode(ctx, pair.RefreshToken, jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = svc.ValidateAndDecode(ctx, pair.AccessToken, jwtx.TokenTypeRefresh)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		_, err := svc.ValidateAndDecode(ctx, "not-a-jwt", jwtx.TokenTypeAccess)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRotateRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t, newTestStore(t))
	m := seedMember(t, svc)

	t.Run("rotation issues a new pair and kills the old token", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(ctx, m.Principal(), "agent-a", true)
		require.NoError(t, err)

		rotated, err := svc.RotateRefreshToken(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
		require.NotEmpty(t, rotated.AccessToken)

		// Old token is spent.
		_, err = svc.RotateRefreshToken(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)

		// Replacement inherits the auto-login preference.
		auto, err := svc.IsAutoLogin(ctx, rotated.RefreshToken)
		require.NoError(t, err)
		require.True(t, auto)
	})

	t.Run("exactly one concurrent rotation wins", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(ctx, m.Principal(), "agent-b", false)
		require.NoError(t, err)

		const callers = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)
		for range callers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := svc.RotateRefreshToken(ctx, pair.RefreshToken); err == nil {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 1, wins)
	})

	t.Run("revoked token cannot rotate", func(t *testing.T) {
		pair, err := svc.GenerateTokenPair(ctx, m.Principal(), "agent-c", false)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, pair.RefreshToken))

		_, err = svc.RotateRefreshToken(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired record cannot rotate", func(t *testing.T) {
		expired := newTestTokenService(t, newTestStore(t))
		em := seedMember(t, expired)
		expired.RefreshTTL = -time.Minute // record and JWT both already expired

		pair, err := expired.GenerateTokenPair(ctx, em.Principal(), "agent-d", false)
		require.NoError(t, err)

		_, err = expired.RotateRefreshToken(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIsAutoLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t, newTestStore(t))
	m := seedMember(t, svc)

	plain, err := svc.GenerateTokenPair(ctx, m.Principal(), "agent", false)
	require.NoError(t, err)
	auto, err := svc.GenerateTokenPair(ctx, m.Principal(), "agent", true)
	require.NoError(t, err)

	got, err := svc.IsAutoLogin(ctx, plain.RefreshToken)
	require.NoError(t, err)
	require.False(t, got)

	got, err = svc.IsAutoLogin(ctx, auto.RefreshToken)
	require.NoError(t, err)
	require.True(t, got)
}

func TestRevokeAllForMember(t *testing.T) {
	ctx := context.Background()
	svc := newTestTokenService(t, newTestStore(t))
	m := seedMember(t, svc)

	a, err := svc.GenerateTokenPair(ctx, m.Principal(), "agent-1", false)
	require.NoError(t, err)
	b, err := svc.GenerateTokenPair(ctx, m.Principal(), "agent-2", true)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeAllForMember(ctx, m.ID))

	_, err = svc.RotateRefreshToken(ctx, a.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.RotateRefreshToken(ctx, b.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestCheckEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	available, err := svc.CheckEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.True(t, available)

	_, err = svc.Signup(ctx, "new@example.com", "secret-password", "newbie")
	require.NoError(t, err)

	available, err = svc.CheckEmail(ctx, "new@example.com")
	require.NoError(t, err)
	require.False(t, available)

	// Case variations count as taken.
	available, err = svc.CheckEmail(ctx, "NEW@example.com")
	require.NoError(t, err)
	require.False(t, available)
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	t.Run("creates an active member", func(t *testing.T) {
		m, err := svc.Signup(ctx, "direct@example.com", "secret-password", "direct")
		require.NoError(t, err)
		require.True(t, m.Activated)
		require.Equal(t, domain.RoleMember, m.Role)
		require.Equal(t, domain.ProviderLocal, m.Provider)
		require.NotEqual(t, "secret-password", m.PasswordHash)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		_, err := svc.Signup(ctx, "direct@example.com", "other-password", "other")
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("duplicate check is case-insensitive", func(t *testing.T) {
		_, err := svc.Signup(ctx, "DIRECT@example.com", "other-password", "other")
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})
}

func TestRegisterAndActivate(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAuthService(t)

	m, err := svc.RegisterUser(ctx, "pending@example.com", "secret-password", "pending")
	require.NoError(t, err)
	require.False(t, m.Activated)

	token := mailer.lastToken("pending@example.com")
	require.NotEmpty(t, token)

	t.Run("pending member cannot log in", func(t *testing.T) {
		_, err := svc.Login(ctx, "pending@example.com", "secret-password", "agent", false)
		require.ErrorIs(t, err, ErrNotActivated)
	})

	t.Run("activation flips the member active", func(t *testing.T) {
		require.NoError(t, svc.ActivateUser(ctx, token))

		got, err := svc.GetMember(ctx, m.ID)
		require.NoError(t, err)
		require.True(t, got.Activated)
	})

	t.Run("activation token is single-use", func(t *testing.T) {
		err := svc.ActivateUser(ctx, token)
		require.ErrorIs(t, err, ErrInvalidActivationToken)
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		err := svc.ActivateUser(ctx, "no-such-token")
		require.ErrorIs(t, err, ErrInvalidActivationToken)
	})
}

func TestActivationExpiry(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAuthService(t)
	svc.ActivationTTL = -time.Minute // every issued token is already expired

	_, err := svc.RegisterUser(ctx, "late@example.com", "secret-password", "late")
	require.NoError(t, err)

	token := mailer.lastToken("late@example.com")
	require.NotEmpty(t, token)

	err = svc.ActivateUser(ctx, token)
	require.ErrorIs(t, err, ErrExpiredActivationToken)
}

func TestResendActivation(t *testing.T) {
	ctx := context.Background()
	svc, mailer := newTestAuthService(t)

	_, err := svc.RegisterUser(ctx, "resend@example.com", "secret-password", "resend")
	require.NoError(t, err)
	first := mailer.lastToken("resend@example.com")

	require.NoError(t, svc.ResendActivation(ctx, "resend@example.com"))
	second := mailer.lastToken("resend@example.com")
	require.NotEqual(t, first, second)

	t.Run("replaced token no longer works", func(t *testing.T) {
		require.ErrorIs(t, svc.ActivateUser(ctx, first), ErrInvalidActivationToken)
		require.NoError(t, svc.ActivateUser(ctx, second))
	})

	t.Run("unknown email reports not registered", func(t *testing.T) {
		err := svc.ResendActivation(ctx, "ghost@example.com")
		require.ErrorIs(t, err, ErrNotRegistered)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Signup(ctx, "login@example.com", "secret-password", "login")
	require.NoError(t, err)

	t.Run("valid credentials issue a pair", func(t *testing.T) {
		pair, err := svc.Login(ctx, "login@example.com", "secret-password", "agent", true)
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		auto, err := svc.IsAutoLogin(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.True(t, auto)
	})

	t.Run("wrong password and unknown email fail alike", func(t *testing.T) {
		_, badPass := svc.Login(ctx, "login@example.com", "wrong-password", "agent", false)
		_, badEmail := svc.Login(ctx, "ghost@example.com", "secret-password", "agent", false)

		require.ErrorIs(t, badPass, ErrInvalidCredentials)
		require.ErrorIs(t, badEmail, ErrInvalidCredentials)
	})

	t.Run("email is normalized", func(t *testing.T) {
		_, err := svc.Login(ctx, "  LOGIN@example.com ", "secret-password", "agent", false)
		require.NoError(t, err)
	})
}

func TestReissueAndLogout(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Signup(ctx, "session@example.com", "secret-password", "session")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "session@example.com", "secret-password", "agent", false)
	require.NoError(t, err)

	rotated, err := svc.Reissue(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))

	t.Run("logged-out token cannot reissue", func(t *testing.T) {
		_, err := svc.Reissue(ctx, rotated.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("double logout rejected", func(t *testing.T) {
		err := svc.Logout(ctx, rotated.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestHousekeepingSweep(t *testing.T) {
	svc, mailer := newTestAuthService(t)
	svc.ActivationTTL = -time.Minute

	ctx := context.Background()
	_, err := svc.RegisterUser(ctx, "sweep@example.com", "secret-password", "sweep")
	require.NoError(t, err)
	require.NotEmpty(t, mailer.lastToken("sweep@example.com"))

	hk := NewHousekeepingService(svc.Store, discardLogger(), time.Hour)
	hk.Start()
	hk.Stop() // Start runs one cleanup immediately; Stop waits for it

	err = svc.ActivateUser(ctx, mailer.lastToken("sweep@example.com"))
	require.ErrorIs(t, err, ErrInvalidActivationToken)
}

func TestActivationTTLConfig(t *testing.T) {
	svc, _ := newTestAuthService(t)

	svc.ActivationTTL = 0
	require.Equal(t, DefaultActivationTTL, svc.activationTTL())

	svc.ActivationTTL = 2 * time.Hour
	require.Equal(t, 2*time.Hour, svc.activationTTL())

	// Negative values are deliberate (expire-immediately), not unset.
	svc.ActivationTTL = -time.Minute
	require.Equal(t, -time.Minute, svc.activationTTL())
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	m, err := svc.Signup(ctx, "profile@example.com", "secret-password", "before")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, m.ID, "after", "https://cdn.example.com/p.png")
	require.NoError(t, err)
	require.Equal(t, "after", updated.Nickname)
	require.Equal(t, "https://cdn.example.com/p.png", updated.PhotoURL)

	t.Run("unknown member", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, "no-such-member", "x", "")
		require.ErrorIs(t, err, ErrMemberNotFound)
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Signup(ctx, "rotate@example.com", "old-password", "rotate")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "rotate@example.com", "old-password", "agent", false)
	require.NoError(t, err)

	claims, err := svc.Tokens.ValidateAndDecode(ctx, pair.AccessToken, jwtx.TokenTypeAccess)
	require.NoError(t, err)

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := svc.ChangePassword(ctx, claims.Subject, "not-the-password", "new-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	require.NoError(t, svc.ChangePassword(ctx, claims.Subject, "old-password", "new-password"))

	t.Run("outstanding refresh tokens revoked", func(t *testing.T) {
		_, err := svc.Reissue(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("new password works, old does not", func(t *testing.T) {
		_, err := svc.Login(ctx, "rotate@example.com", "old-password", "agent", false)
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "rotate@example.com", "new-password", "agent", false)
		require.NoError(t, err)
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService(t)

	_, err := svc.Signup(ctx, "gone@example.com", "secret-password", "gone")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "gone@example.com", "secret-password", "agent", false)
	require.NoError(t, err)

	claims, err := svc.Tokens.ValidateAndDecode(ctx, pair.AccessToken, jwtx.TokenTypeAccess)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, claims.Subject))

	_, err = svc.GetMember(ctx, claims.Subject)
	require.ErrorIs(t, err, ErrMemberNotFound)

	t.Run("orphaned refresh token cannot reissue", func(t *testing.T) {
		_, err := svc.Reissue(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("double delete reports not found", func(t *testing.T) {
		err := svc.DeleteAccount(ctx, claims.Subject)
		require.ErrorIs(t, err, ErrMemberNotFound)
	})
}

package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipic-shop/recipic/pkg/authapi"
)

func signupAndLogin(t *testing.T, env *testEnv, email string, autoLogin bool) authapi.TokenResponse {
	t.Helper()

	rr := env.postJSON(t, "/auth/signup", authapi.SignupRequest{
		Email: email, Password: "correct horse battery staple", Nickname: "member",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = env.postJSON(t, "/auth/login", authapi.LoginRequest{
		Email: email, Password: "correct horse battery staple", AutoLogin: autoLogin,
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	return decodeBody[authapi.TokenResponse](t, rr)
}

func TestLoginIssuesTokenPair(t *testing.T) {
	env := newTestEnv(t)

	pair := signupAndLogin(t, env, "login@recipic.shop", false)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, 60, pair.ExpiresIn)

	t.Run("wrong password", func(t *testing.T) {
		rr := env.postJSON(t, "/auth/login", authapi.LoginRequest{
			Email: "login@recipic.shop", Password: "wrong",
		}, "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Equal(t, authapi.ErrorCodeInvalidCredentials, decodeBody[authapi.Error](t, rr).Code)
	})

	t.Run("unknown email reads the same", func(t *testing.T) {
		rr := env.postJSON(t, "/auth/login", authapi.LoginRequest{
			Email: "nobody@recipic.shop", Password: "wrong",
		}, "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.Equal(t, authapi.ErrorCodeInvalidCredentials, decodeBody[authapi.Error](t, rr).Code)
	})
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	pair := signupAndLogin(t, env, "me@recipic.shop", false)

	rr := env.get(t, "/auth/me", pair.AccessToken)
	require.Equal(t, http.StatusOK, rr.Code)
	member := decodeBody[authapi.MemberResponse](t, rr)
	require.Equal(t, "me@recipic.shop", member.Email)

	t.Run("anonymous", func(t *testing.T) {
		rr := env.get(t, "/auth/me", "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		rr := env.get(t, "/auth/me", pair.RefreshToken)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestReissueRotatesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	pair := signupAndLogin(t, env, "rotate@recipic.shop", false)

	rr := env.postJSON(t, "/auth/reissue", authapi.ReissueRequest{RefreshToken: pair.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	next := decodeBody[authapi.TokenResponse](t, rr)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The spent token is gone for good.
	rr = env.postJSON(t, "/auth/reissue", authapi.ReissueRequest{RefreshToken: pair.RefreshToken}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, authapi.ErrorCodeInvalidToken, decodeBody[authapi.Error](t, rr).Code)

	// The replacement still works.
	rr = env.postJSON(t, "/auth/reissue", authapi.ReissueRequest{RefreshToken: next.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	pair := signupAndLogin(t, env, "logout@recipic.shop", false)

	t.Run("requires access token", func(t *testing.T) {
		rr := env.postJSON(t, "/auth/logout", authapi.LogoutRequest{RefreshToken: pair.RefreshToken}, "")
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	rr := env.postJSON(t, "/auth/logout",
		authapi.LogoutRequest{RefreshToken: pair.RefreshToken}, pair.AccessToken)
	require.Equal(t, http.StatusNoContent, rr.Code)

	// The revoked token can no longer rotate.
	rr = env.postJSON(t, "/auth/reissue", authapi.ReissueRequest{RefreshToken: pair.RefreshToken}, "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAutoLoginProbe(t *testing.T) {
	env := newTestEnv(t)

	pair := signupAndLogin(t, env, "remember@recipic.shop", true)
	rr := env.get(t, "/auth/autologin", pair.RefreshToken)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, decodeBody[authapi.AutoLoginResponse](t, rr).AutoLogin)

	session := signupAndLogin(t, env, "session@recipic.shop", false)
	rr = env.get(t, "/auth/autologin", session.RefreshToken)
	require.Equal(t, http.StatusOK, rr.Code)
	require.False(t, decodeBody[authapi.AutoLoginResponse](t, rr).AutoLogin)

	t.Run("missing token", func(t *testing.T) {
		rr := env.get(t, "/auth/autologin", "")
		require.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

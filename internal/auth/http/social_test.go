package http_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/internal/auth/service"
	"github.com/recipic-shop/recipic/pkg/authapi"
	"golang.org/x/oauth2"
)

// installKakao points the env's kakao provider at an httptest stand-in for
// the token and userinfo endpoints.
func installKakao(t *testing.T, env *testEnv, userinfo string) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"provider-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/v2/user/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(userinfo))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	env.social.Providers[domain.ProviderKakao] = &service.SocialProvider{
		Name: domain.ProviderKakao,
		Config: &oauth2.Config{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Endpoint: oauth2.Endpoint{
				AuthURL:  srv.URL + "/oauth/authorize",
				TokenURL: srv.URL + "/oauth/token",
			},
			RedirectURL: "http://auth.test/login/oauth2/code/kakao",
			Scopes:      []string{"account_email", "profile_nickname"},
		},
		UserInfoURL:   srv.URL + "/v2/user/me",
		IDField:       "id",
		EmailField:    "kakao_account.email",
		NicknameField: "kakao_account.profile.nickname",
		PhotoField:    "kakao_account.profile.profile_image_url",
	}
}

func stateCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauth2_state" && c.Value != "" {
			return c
		}
	}
	t.Fatal("no oauth2_state cookie set")
	return nil
}

func TestSocialAuthorize(t *testing.T) {
	env := newTestEnv(t)
	installKakao(t, env, `{}`)

	rr := env.get(t, "/auth/oauth2/kakao", "")
	require.Equal(t, http.StatusFound, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "client-id", loc.Query().Get("client_id"))

	cookie := stateCookie(t, rr)
	require.Equal(t, cookie.Value, loc.Query().Get("state"))
	require.True(t, cookie.HttpOnly)

	t.Run("unknown provider", func(t *testing.T) {
		rr := env.get(t, "/auth/oauth2/github", "")
		require.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSocialCallback(t *testing.T) {
	env := newTestEnv(t)
	installKakao(t, env, `{
		"id": 98765,
		"kakao_account": {
			"email": "social@example.com",
			"profile": {"nickname": "soshi"}
		}
	}`)

	authorize := env.get(t, "/auth/oauth2/kakao", "")
	require.Equal(t, http.StatusFound, authorize.Code)
	cookie := stateCookie(t, authorize)

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state="+url.QueryEscape(cookie.Value), nil)
	req.AddCookie(cookie)
	rr := env.do(t, req)
	require.Equal(t, http.StatusFound, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "http://recipic.shop/oauth2/redirect", loc.Scheme+"://"+loc.Host+loc.Path)
	require.NotEmpty(t, loc.Query().Get("access_token"))
	require.NotEmpty(t, loc.Query().Get("refresh_token"))

	// The handshake provisioned an active member the tokens belong to.
	me := env.get(t, "/auth/me", loc.Query().Get("access_token"))
	require.Equal(t, http.StatusOK, me.Code)
	member := decodeBody[authapi.MemberResponse](t, me)
	require.Equal(t, "social@example.com", member.Email)
	require.Equal(t, domain.ProviderKakao, member.Provider)
	require.True(t, member.Activated)
}

func TestSocialCallbackStateMismatch(t *testing.T) {
	env := newTestEnv(t)
	installKakao(t, env, `{}`)

	authorize := env.get(t, "/auth/oauth2/kakao", "")
	cookie := stateCookie(t, authorize)

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state=forged", nil)
	req.AddCookie(cookie)
	rr := env.do(t, req)
	require.Equal(t, http.StatusFound, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/oauth2/failure", loc.Path)
	require.Equal(t, "state_mismatch", loc.Query().Get("error"))
}

func TestSocialCallbackHandshakeFailure(t *testing.T) {
	env := newTestEnv(t)
	// Userinfo without an email cannot be resolved to a member.
	installKakao(t, env, `{"id": 111}`)

	authorize := env.get(t, "/auth/oauth2/kakao", "")
	cookie := stateCookie(t, authorize)

	req := httptest.NewRequest(http.MethodGet,
		"/login/oauth2/code/kakao?code=auth-code&state="+url.QueryEscape(cookie.Value), nil)
	req.AddCookie(cookie)
	rr := env.do(t, req)
	require.Equal(t, http.StatusFound, rr.Code)

	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/oauth2/failure", loc.Path)
	require.Equal(t, "handshake_failed", loc.Query().Get("error"))
}

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recipic-shop/recipic/internal/auth/domain"
	"github.com/recipic-shop/recipic/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLookupString(t *testing.T) {
	t.Parallel()

	doc := map[string]any{
		"id": float64(12345),
		"kakao_account": map[string]any{
			"email": "kakao@example.com",
			"profile": map[string]any{
				"nickname": "kakao-user",
			},
		},
	}

	require.Equal(t, "12345", lookupString(doc, "id"))
	require.Equal(t, "kakao@example.com", lookupString(doc, "kakao_account.email"))
	require.Equal(t, "kakao-user", lookupString(doc, "kakao_account.profile.nickname"))
	require.Empty(t, lookupString(doc, "kakao_account.missing"))
	require.Empty(t, lookupString(doc, ""))
}

// fakeProvider runs an httptest server standing in for the OAuth2 token
// and userinfo endpoints.
func fakeProvider(t *testing.T, userinfo string) *SocialProvider {
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

	return &SocialProvider{
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

func TestSocialLoginCallback(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTestTokenService(t, st)

	provider := fakeProvider(t, `{
		"id": 98765,
		"kakao_account": {
			"email": "social@example.com",
			"profile": {"nickname": "soshi", "profile_image_url": "http://img.test/p.png"}
		}
	}`)

	svc := &SocialLoginService{
		Store:     st,
		Tokens:    tokens,
		Providers: map[string]*SocialProvider{domain.ProviderKakao: provider},
	}

	t.Run("first login creates an active member", func(t *testing.T) {
		pair, err := svc.HandleCallback(ctx, "kakao", "auth-code", "agent")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)

		m, err := st.Members().GetMemberByEmail(ctx, "social@example.com")
		require.NoError(t, err)
		require.True(t, m.Activated)
		require.Equal(t, domain.ProviderKakao, m.Provider)
		require.Equal(t, "soshi", m.Nickname)
		require.Equal(t, "http://img.test/p.png", m.PhotoURL)

		claims, err := tokens.ValidateAndDecode(ctx, pair.AccessToken, jwtx.TokenTypeAccess)
		require.NoError(t, err)
		require.Equal(t, m.ID, claims.Subject)
	})

	t.Run("second login reuses the member", func(t *testing.T) {
		_, err := svc.HandleCallback(ctx, "kakao", "another-code", "agent")
		require.NoError(t, err)

		exists, err := st.Members().EmailExists(ctx, "social@example.com")
		require.NoError(t, err)
		require.True(t, exists)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		_, err := svc.HandleCallback(ctx, "github", "code", "agent")
		require.ErrorIs(t, err, ErrUnknownProvider)
	})

	t.Run("auth code URL carries the state", func(t *testing.T) {
		url, err := svc.AuthCodeURL("kakao", "csrf-state")
		require.NoError(t, err)
		require.Contains(t, url, "state=csrf-state")
		require.Contains(t, url, "client_id=client-id")
	})
}

func TestSocialLoginHandshakeFailure(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	provider := fakeProvider(t, `{"id": 1}`) // no email in userinfo

	svc := &SocialLoginService{
		Store:     st,
		Tokens:    newTestTokenService(t, st),
		Providers: map[string]*SocialProvider{domain.ProviderKakao: provider},
	}

	_, err := svc.HandleCallback(ctx, "kakao", "auth-code", "agent")
	require.ErrorIs(t, err, ErrSocialHandshake)
}

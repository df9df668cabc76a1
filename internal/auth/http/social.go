package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/recipic-shop/recipic/internal/auth/service"
	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

const stateCookieName = "oauth2_state"

// SocialHandler drives the OAuth2 authorization-code flow for the configured
// social providers. The state parameter is double-submitted: once in the
// authorization URL and once in a short-lived cookie, and both must match on
// the callback.
type SocialHandler struct {
	SocialService *service.SocialLoginService

	// SuccessURL receives access_token/refresh_token query parameters after
	// a completed handshake. FailureURL receives an error parameter.
	SuccessURL string
	FailureURL string
}

// HandleAuthorize godoc
//
//	@Summary		Start social login
//	@Description	Redirects to the provider's authorization endpoint with a fresh CSRF state.
//	@Tags			Auth
//	@Param			provider	path	string	true	"kakao, google or naver"
//	@Success		302
//	@Failure		404	{object}	authapi.Error	"unknown provider"
//	@Router			/auth/oauth2/{provider} [get].
func (h *SocialHandler) HandleAuthorize(w http.ResponseWriter, r *http.Request) {
	provider := pathTail(r.URL.Path)

	state, err := h.SocialService.NewState()
	if err != nil {
		slogx.FromContext(r.Context()).Error("state generation failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	authURL, err := h.SocialService.AuthCodeURL(provider, state)
	if err != nil {
		authapi.ErrNotFound.WriteError(w)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/login/oauth2",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		Social login callback
//	@Description	Completes the code exchange and redirects to the frontend with a token pair. Handshake failures redirect to the failure URL instead.
//	@Tags			Auth
//	@Param			provider	path	string	true	"kakao, google or naver"
//	@Param			code		query	string	true	"authorization code"
//	@Param			state		query	string	true	"CSRF state"
//	@Success		302
//	@Router			/login/oauth2/code/{provider} [get].
func (h *SocialHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	provider := pathTail(r.URL.Path)
	log := slogx.FromContext(r.Context())

	clearStateCookie(w)

	cookie, err := r.Cookie(stateCookieName)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		log.Warn("oauth2 state mismatch", "provider", provider)
		h.redirectFailure(w, r, "state_mismatch")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectFailure(w, r, "missing_code")
		return
	}

	pair, err := h.SocialService.HandleCallback(r.Context(), provider, code, r.UserAgent())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownProvider):
			authapi.ErrNotFound.WriteError(w)
		case errors.Is(err, service.ErrSocialHandshake):
			h.redirectFailure(w, r, "handshake_failed")
		default:
			log.Error("social login failed", "provider", provider, "err", err)
			h.redirectFailure(w, r, "server_error")
		}
		return
	}

	q := url.Values{}
	q.Set("access_token", pair.AccessToken)
	q.Set("refresh_token", pair.RefreshToken)
	http.Redirect(w, r, h.SuccessURL+"?"+q.Encode(), http.StatusFound)
}

func (h *SocialHandler) redirectFailure(w http.ResponseWriter, r *http.Request, reason string) {
	q := url.Values{}
	q.Set("error", reason)
	http.Redirect(w, r, h.FailureURL+"?"+q.Encode(), http.StatusFound)
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/login/oauth2",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// pathTail returns the final path segment, the {provider} slot in both
// social routes.
func pathTail(path string) string {
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

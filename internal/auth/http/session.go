package http

import (
	"errors"
	"net/http"

	"github.com/recipic-shop/recipic/internal/auth/service"
	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/httpx"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

// SessionHandler serves login, token rotation, logout and the auto-login
// probe. Refresh tokens travel in the JSON body, never in cookies.
type SessionHandler struct {
	AuthService *service.AuthService
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Exchanges email/password credentials for an access/refresh token pair. The refresh lifetime depends on the auto_login flag.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.LoginRequest	true	"credentials"
//	@Success		200		{object}	authapi.TokenResponse
//	@Failure		401		{object}	authapi.Error	"unknown email or wrong password"
//	@Failure		403		{object}	authapi.Error	"account not activated"
//	@Router			/auth/login [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authapi.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Login(r.Context(), req.Email, req.Password, r.UserAgent(), req.AutoLogin)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNotRegistered):
			authapi.ErrInvalidCredentials.WriteError(w)
		case errors.Is(err, service.ErrNotActivated):
			authapi.ErrNotActivated.WriteError(w)
		default:
			slogx.FromContext(r.Context()).Error("login failed", "err", err)
			authapi.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(*pair))
}

// HandleReissue godoc
//
//	@Summary		Reissue tokens
//	@Description	Rotates a refresh token: the presented token is revoked and a fresh pair is returned. A spent or revoked token yields 401.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.ReissueRequest	true	"refresh token"
//	@Success		200		{object}	authapi.TokenResponse
//	@Failure		401		{object}	authapi.Error
//	@Router			/auth/reissue [post].
func (h *SessionHandler) HandleReissue(w http.ResponseWriter, r *http.Request) {
	var req authapi.ReissueRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Reissue(r.Context(), req.RefreshToken)
	if err != nil {
		writeTokenError(w, r, err, "reissue failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tokenResponse(*pair))
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the presented refresh token. The caller must hold a valid access token.
//	@Tags			Auth
//	@Accept			json
//	@Param			body	body	authapi.LogoutRequest	true	"refresh token"
//	@Success		204
//	@Failure		401	{object}	authapi.Error
//	@Security		BearerAuth
//	@Router			/auth/logout [post].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authapi.LogoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.Logout(r.Context(), req.RefreshToken); err != nil {
		writeTokenError(w, r, err, "logout failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAutoLogin reports whether the presented refresh token was issued
// with the auto-login lifetime.
func (h *SessionHandler) HandleAutoLogin(w http.ResponseWriter, r *http.Request) {
	token := httpx.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("refresh_token")
	}
	if token == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	autoLogin, err := h.AuthService.IsAutoLogin(r.Context(), token)
	if err != nil {
		writeTokenError(w, r, err, "auto-login probe failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.AutoLoginResponse{AutoLogin: autoLogin})
}

func writeTokenError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, service.ErrInvalidToken) {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}
	slogx.FromContext(r.Context()).Error(msg, "err", err)
	authapi.ErrServerError.WriteError(w)
}

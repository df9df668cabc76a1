package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/recipic-shop/recipic/internal/auth/service"
	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/httpx"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

// AccountHandler serves the account lifecycle endpoints: signup, register,
// activate, resend-activation and check-email.
type AccountHandler struct {
	AuthService *service.AuthService
}

// decodeJSON parses a JSON request body into dst. On failure it writes the
// invalid-request envelope and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		authapi.ErrInvalidRequest.WriteError(w)
		return false
	}
	return true
}

// HandleSignup godoc
//
//	@Summary		Sign up
//	@Description	Creates a member that can log in immediately, without email verification.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.SignupRequest	true	"email, password, nickname"
//	@Success		201		{object}	authapi.MemberResponse
//	@Failure		400		{object}	authapi.Error
//	@Failure		409		{object}	authapi.Error	"email already registered"
//	@Router			/auth/signup [post].
func (h *AccountHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req authapi.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Password == "" || strings.TrimSpace(req.Nickname) == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	member, err := h.AuthService.Signup(r.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		writeAccountError(w, r, err, "signup failed")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, memberResponse(member))
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates a pending member and mails a single-use activation link valid for 30 minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.RegisterRequest	true	"email, password, nickname"
//	@Success		201		{object}	authapi.MemberResponse
//	@Failure		400		{object}	authapi.Error
//	@Failure		409		{object}	authapi.Error	"email already registered"
//	@Router			/auth/register [post].
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authapi.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) || req.Password == "" || strings.TrimSpace(req.Nickname) == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	member, err := h.AuthService.RegisterUser(r.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		writeAccountError(w, r, err, "register failed")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, memberResponse(member))
}

// HandleActivate godoc
//
//	@Summary		Activate account
//	@Description	Consumes an activation token from the email link. Tokens are single-use and expire after 30 minutes.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	authapi.ActivateRequest	false	"token (may also be passed as ?token=)"
//	@Success		204
//	@Failure		400	{object}	authapi.Error	"invalid or expired token"
//	@Router			/auth/activate [post].
func (h *AccountHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		var req authapi.ActivateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		token = req.Token
	}
	if strings.TrimSpace(token) == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ActivateUser(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidActivationToken):
			authapi.ErrInvalidActivationToken.WriteError(w)
		case errors.Is(err, service.ErrExpiredActivationToken):
			authapi.ErrExpiredActivationToken.WriteError(w)
		default:
			slogx.FromContext(r.Context()).Error("activation failed", "err", err)
			authapi.ErrServerError.WriteError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleResendActivation replaces the pending activation token and mails a
// fresh link. Activated accounts get a 204 as well, so the endpoint can't
// be used to probe account state.
func (h *AccountHandler) HandleResendActivation(w http.ResponseWriter, r *http.Request) {
	var req authapi.ResendActivationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ResendActivation(r.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrNotRegistered) {
			authapi.ErrNotRegistered.WriteError(w)
			return
		}
		slogx.FromContext(r.Context()).Error("resend activation failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCheckEmail godoc
//
//	@Summary		Check email availability
//	@Tags			Auth
//	@Produce		json
//	@Param			email	query		string	true	"email to check"
//	@Success		200		{object}	authapi.CheckEmailResponse
//	@Failure		400		{object}	authapi.Error
//	@Router			/auth/check-email [get].
func (h *AccountHandler) HandleCheckEmail(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if !validEmail(email) {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	available, err := h.AuthService.CheckEmail(r.Context(), email)
	if err != nil {
		slogx.FromContext(r.Context()).Error("check email failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.CheckEmailResponse{Exists: !available})
}

func writeAccountError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	if errors.Is(err, service.ErrDuplicateEmail) {
		authapi.ErrDuplicateEmail.WriteError(w)
		return
	}
	slogx.FromContext(r.Context()).Error(msg, "err", err)
	authapi.ErrServerError.WriteError(w)
}

// validEmail is a sanity check, not RFC validation: one "@" with something
// on both sides.
func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.Contains(email[at+1:], "@")
}

package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/recipic-shop/recipic/internal/auth/service"
	"github.com/recipic-shop/recipic/pkg/authapi"
	"github.com/recipic-shop/recipic/pkg/httpx"
	"github.com/recipic-shop/recipic/pkg/slogx"
)

// MeHandler serves the authenticated member's own account: profile read
// and update, password change, and deletion.
type MeHandler struct {
	AuthService *service.AuthService
}

// HandleMe godoc
//
//	@Summary		Current member
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authapi.MemberResponse
//	@Failure		401	{object}	authapi.Error
//	@Security		BearerAuth
//	@Router			/auth/me [get].
func (h *MeHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	memberID := httpx.MemberIDFromContext(r.Context())
	if memberID == "" {
		authapi.ErrUnauthenticated.WriteError(w)
		return
	}

	member, err := h.AuthService.GetMember(r.Context(), memberID)
	if err != nil {
		writeMemberError(w, r, err, "member lookup failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, memberResponse(member))
}

// HandleUpdateMe godoc
//
//	@Summary		Update profile
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authapi.UpdateProfileRequest	true	"nickname, photo_url"
//	@Success		200		{object}	authapi.MemberResponse
//	@Failure		400		{object}	authapi.Error
//	@Failure		401		{object}	authapi.Error
//	@Security		BearerAuth
//	@Router			/auth/me [put].
func (h *MeHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	memberID := httpx.MemberIDFromContext(r.Context())

	var req authapi.UpdateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Nickname) == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	member, err := h.AuthService.UpdateProfile(r.Context(), memberID, req.Nickname, req.PhotoURL)
	if err != nil {
		writeMemberError(w, r, err, "profile update failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, memberResponse(member))
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Re-verifies the current password, installs the new one and revokes every outstanding refresh token.
//	@Tags			Auth
//	@Accept			json
//	@Param			body	body	authapi.ChangePasswordRequest	true	"current and new password"
//	@Success		204
//	@Failure		401	{object}	authapi.Error	"wrong current password"
//	@Security		BearerAuth
//	@Router			/auth/password [put].
func (h *MeHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	memberID := httpx.MemberIDFromContext(r.Context())

	var req authapi.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.AuthService.ChangePassword(r.Context(), memberID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			authapi.ErrInvalidCredentials.WriteError(w)
			return
		}
		writeMemberError(w, r, err, "password change failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteMe godoc
//
//	@Summary		Delete account
//	@Description	Removes the member and every token bound to it.
//	@Tags			Auth
//	@Success		204
//	@Failure		401	{object}	authapi.Error
//	@Security		BearerAuth
//	@Router			/auth/me [delete].
func (h *MeHandler) HandleDeleteMe(w http.ResponseWriter, r *http.Request) {
	memberID := httpx.MemberIDFromContext(r.Context())

	if err := h.AuthService.DeleteAccount(r.Context(), memberID); err != nil {
		writeMemberError(w, r, err, "account deletion failed")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeMemberError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	// The token outlived the account; treat it as no longer valid.
	if errors.Is(err, service.ErrMemberNotFound) {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}
	slogx.FromContext(r.Context()).Error(msg, "err", err)
	authapi.ErrServerError.WriteError(w)
}

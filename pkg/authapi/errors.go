package authapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes returned in the "error" field of failure envelopes.
const (
	ErrorCodeInvalidRequest         = "invalid_request"
	ErrorCodeInvalidCredentials     = "invalid_credentials"
	ErrorCodeDuplicateEmail         = "duplicate_email"
	ErrorCodeNotRegistered          = "not_registered"
	ErrorCodeNotActivated           = "not_activated"
	ErrorCodeInvalidToken           = "invalid_token"
	ErrorCodeInvalidActivationToken = "invalid_activation_token"
	ErrorCodeExpiredActivationToken = "expired_activation_token"
	ErrorCodeNotFound               = "not_found"
	ErrorCodeUnauthenticated        = "unauthenticated"
	ErrorCodeForbidden              = "forbidden"
	ErrorCodeServerError            = "server_error"
)

// Error is the structured failure envelope. It implements the error
// interface and knows how to write itself as an HTTP response, so handlers
// never leak stack traces or framework error pages.
type Error struct {
	// StatusCode is the HTTP status code for this error.
	StatusCode int `json:"-"`

	// Code is the machine-readable error code.
	Code string `json:"error"`

	// Description is a human-readable description.
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this Error to an HTTP response writer.
func (e *Error) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned for malformed bodies or missing fields.
	ErrInvalidRequest = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is returned on bad email/password without
	// revealing which of the two was wrong.
	ErrInvalidCredentials = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "email or password is incorrect",
	}

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = &Error{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeDuplicateEmail,
		Description: "email is already registered",
	}

	// ErrNotRegistered is returned when a valid token references a member
	// that no longer exists.
	ErrNotRegistered = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeNotRegistered,
		Description: "member is not registered",
	}

	// ErrNotActivated is returned when a pending member tries to log in.
	ErrNotActivated = &Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeNotActivated,
		Description: "member has not completed email activation",
	}

	// ErrInvalidToken covers malformed, expired, rotated-away or
	// wrongly-bound refresh tokens.
	ErrInvalidToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "token is invalid or expired",
	}

	// ErrInvalidActivationToken is returned for unknown or consumed
	// activation tokens.
	ErrInvalidActivationToken = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidActivationToken,
		Description: "activation token is invalid",
	}

	// ErrExpiredActivationToken is returned past the activation window.
	ErrExpiredActivationToken = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeExpiredActivationToken,
		Description: "activation token has expired",
	}

	// ErrNotFound is returned for unknown resources such as an unconfigured
	// social provider.
	ErrNotFound = &Error{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeNotFound,
		Description: "the requested resource does not exist",
	}

	// ErrUnauthenticated is the authentication entry point response (401).
	ErrUnauthenticated = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeUnauthenticated,
		Description: "authentication is required",
	}

	// ErrForbidden is the access-denied handler response (403).
	ErrForbidden = &Error{
		StatusCode:  http.StatusForbidden,
		Code:        ErrorCodeForbidden,
		Description: "insufficient authority for this resource",
	}

	// ErrServerError is the catch-all for unexpected failures.
	ErrServerError = &Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "an internal error occurred",
	}
)

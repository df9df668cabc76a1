package service

import "errors"

// Sentinel errors the HTTP layer matches with errors.Is and translates to
// structured responses. Keep the set small; anything else is a 500.
var (
	ErrDuplicateEmail         = errors.New("duplicate_email")
	ErrInvalidCredentials     = errors.New("invalid_credentials")
	ErrNotRegistered          = errors.New("not_registered")
	ErrNotActivated           = errors.New("not_activated")
	ErrInvalidToken           = errors.New("invalid_token")
	ErrInvalidActivationToken = errors.New("invalid_activation_token")
	ErrExpiredActivationToken = errors.New("expired_activation_token")
	ErrMemberNotFound         = errors.New("member_not_found")
)

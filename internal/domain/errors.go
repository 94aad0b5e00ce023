package domain

import "errors"

var (
	ErrRemoteUnavailable  = errors.New("remote unavailable")
	ErrNotFound           = errors.New("not found")
	ErrPlaceNotResolved   = errors.New("place not resolved")
	ErrBookingNotRecorded = errors.New("booking not recorded")
	ErrAuthFailed         = errors.New("authentication failed")
	ErrDuplicate          = errors.New("already exists")

	ErrSuperseded        = errors.New("superseded by a newer query")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// AuthError carries the message shown to the user when sign-in or sign-up fails.
type AuthError struct{ Msg string }

func (e *AuthError) Error() string { return e.Msg }

func (e *AuthError) Unwrap() error { return ErrAuthFailed }

func NewAuthError(msg string) error { return &AuthError{Msg: msg} }

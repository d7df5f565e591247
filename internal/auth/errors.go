package auth

import "errors"

// Sentinel errors returned by the auth service. Handlers match them with
// errors.Is to pick the HTTP status; the message is what the client sees.
var (
	// ErrValidation covers missing or malformed required fields (400).
	ErrValidation = errors.New("validation failed")

	// ErrEmailTaken is returned when a signup or user creation reuses an
	// email that already has an account (400).
	ErrEmailTaken = errors.New("email already registered")

	// ErrBadCredentials is deliberately generic: it does not distinguish an
	// unknown email from a wrong password (401).
	ErrBadCredentials = errors.New("invalid credentials")

	// ErrUserNotFound is returned by stores when no account matches (404).
	ErrUserNotFound = errors.New("user not found")
)

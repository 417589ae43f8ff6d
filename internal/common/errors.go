// Package common defines shared constants and sentinel errors used across
// the credential store, the session gate and the REPL. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Transport-level errors.
	ErrTransportUnavailable = errors.New("transport unavailable")

	// Directory errors.
	ErrDuplicateUser = errors.New("user already exists")
	ErrValidation    = errors.New("validation error")
	ErrProtectedUser = errors.New("user cannot be deleted")

	// Digest errors.
	ErrPasswordTooLong = errors.New("password too long")

	// Authentication outcomes. The gate computes them separately but
	// callers must surface both as ErrInvalidCredentials.
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Role gate.
	ErrForbidden     = errors.New("forbidden")
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrUnknownDigest = errors.New("unknown digest")
)

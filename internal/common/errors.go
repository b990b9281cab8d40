// Package common defines sentinel errors and small helpers shared by the
// authkeeper server layers. Callers match errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Authentication flow errors.
	ErrEmailExists         = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Access token errors (malformed, badly signed or expired).
	ErrInvalidToken = errors.New("invalid token")
)

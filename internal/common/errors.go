// Package common defines shared constants and sentinel errors used across
// client and server layers of clickpass. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Credential errors. ErrInvalidCredentials deliberately covers both an
	// unknown username and a wrong pattern.
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrVerificationFailed = errors.New("verification failed")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrInvalidUsername    = errors.New("invalid username")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrSessionExpired = errors.New("session expired")
)

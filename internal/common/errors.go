// Package common defines shared constants and sentinel errors used across
// the farmauth packages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Credential errors.
	ErrDuplicateIdentity = errors.New("username or email already registered")
	ErrWeakPassword      = errors.New("password below minimum length")
	ErrUnknownAccount    = errors.New("unknown or deactivated account")
	ErrBadCredential     = errors.New("invalid credentials")

	// Session lifecycle errors.
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRevoked  = errors.New("session revoked")

	// Lockout errors.
	ErrTooManyAttempts = errors.New("too many failed login attempts")

	// Storage errors. The only kind worth retrying by the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

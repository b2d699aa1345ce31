package models

import "time"

// SessionStatus tracks a session through its lifecycle. A session starts
// active and terminates as either expired or revoked.
type SessionStatus string

const (
	SessionActive  SessionStatus = "active"
	SessionExpired SessionStatus = "expired"
	SessionRevoked SessionStatus = "revoked"
)

// Session is a time-bounded authorization grant issued after a successful
// login. The token is an opaque bearer secret shown to the caller once.
type Session struct {
	ID          string
	AccountID   string
	Token       string
	Status      SessionStatus
	ExpiresAt   time.Time
	CreatedAt   time.Time
	RemoteAddr  string
	ClientLabel string
}

// Valid reports whether the session authorizes requests at the given instant.
func (s *Session) Valid(now time.Time) bool {
	return s.Status == SessionActive && now.Before(s.ExpiresAt)
}

package models

import "time"

// LoginAttempt is an append-only audit record of a single login try.
// The username is stored by value, not as a foreign key, since failed
// attempts may target accounts that do not exist.
type LoginAttempt struct {
	ID          int64
	Username    string
	RemoteAddr  string
	Success     bool
	Reason      string
	AttemptedAt time.Time
}

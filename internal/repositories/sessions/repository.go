// Package sessions declares the repository contract for session records.
package sessions

import (
	"context"
	"time"

	"github.com/agrisuite/farmauth/internal/models"
)

// Repository defines state transitions for sessions. Transitions are
// idempotent under concurrent execution: each one is a single conditional
// row update, so two racing callers leave the same terminal state.
type Repository interface {
	// Create persists a new active session.
	Create(ctx context.Context, session *models.Session) error

	// GetByToken returns the session bearing the given token, or
	// common.ErrNotFound when no such token was ever issued.
	GetByToken(ctx context.Context, token string) (*models.Session, error)

	// MarkExpired transitions an active session to expired. A session that
	// is already terminal is left untouched.
	MarkExpired(ctx context.Context, id string) error

	// Revoke transitions an active session to revoked. A session that is
	// already terminal is left untouched.
	Revoke(ctx context.Context, id string) error

	// RevokeAll revokes every active session belonging to the account and
	// returns how many were revoked.
	RevokeAll(ctx context.Context, accountID string) (int64, error)

	// DeleteExpiredBefore purges sessions whose expiry passed before the
	// cutoff, whatever their status. Used by the optional reaper;
	// correctness does not depend on it.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

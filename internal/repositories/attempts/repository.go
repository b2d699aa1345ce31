// Package attempts declares the repository contract for the append-only
// login attempt log.
package attempts

import (
	"context"
	"time"

	"github.com/agrisuite/farmauth/internal/models"
)

// Repository records login attempts and answers abuse-detection queries.
// Rows are write-once: there is no update or delete operation.
type Repository interface {
	// Record appends an attempt entry.
	Record(ctx context.Context, attempt *models.LoginAttempt) error

	// CountFailuresSince counts failed attempts for the username at or
	// after the given instant.
	CountFailuresSince(ctx context.Context, username string, since time.Time) (int, error)

	// CountFailuresByAddrSince counts failed attempts from the client
	// address at or after the given instant.
	CountFailuresByAddrSince(ctx context.Context, remoteAddr string, since time.Time) (int, error)
}

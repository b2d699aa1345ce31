package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/agrisuite/farmauth/internal/dbx"
	"github.com/agrisuite/farmauth/internal/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	query := `
		INSERT INTO login_attempts (username, remote_addr, success, reason)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query,
		attempt.Username, attempt.RemoteAddr, attempt.Success, attempt.Reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountFailuresSince(ctx context.Context, username string, since time.Time) (int, error) {
	query := `
		SELECT count(*) FROM login_attempts
		WHERE username = $1 AND success = false AND attempted_at >= $2
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, username, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) CountFailuresByAddrSince(ctx context.Context, remoteAddr string, since time.Time) (int, error) {
	query := `
		SELECT count(*) FROM login_attempts
		WHERE remote_addr = $1 AND success = false AND attempted_at >= $2
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, remoteAddr, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

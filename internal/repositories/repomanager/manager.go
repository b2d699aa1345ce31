// Package repomanager aggregates the entity repositories behind a single
// factory so services can bind them to a plain connection or a transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/agrisuite/farmauth/internal/dbx"
	"github.com/agrisuite/farmauth/internal/repositories/accounts"
	"github.com/agrisuite/farmauth/internal/repositories/attempts"
	"github.com/agrisuite/farmauth/internal/repositories/sessions"
)

// RepositoryManager vends repositories bound to the provided DBTX and
// exposes a schema migration hook.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Attempts(db dbx.DBTX) attempts.Repository
}

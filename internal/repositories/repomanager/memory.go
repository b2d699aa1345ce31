package repomanager

import (
	"context"
	"database/sql"

	"github.com/agrisuite/farmauth/internal/dbx"
	"github.com/agrisuite/farmauth/internal/repositories/accounts"
	"github.com/agrisuite/farmauth/internal/repositories/attempts"
	"github.com/agrisuite/farmauth/internal/repositories/sessions"
)

// InMemoryRepositoryManager serves the same repository instances regardless
// of the DBTX argument, since there is no database underneath. Suitable for
// tests and short-lived tools.
type InMemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
	sessions *sessions.MemoryRepository
	attempts *attempts.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		accounts: accounts.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
		attempts: attempts.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return nil
}

func (m *InMemoryRepositoryManager) Accounts(db dbx.DBTX) accounts.Repository {
	return m.accounts
}

func (m *InMemoryRepositoryManager) Sessions(db dbx.DBTX) sessions.Repository {
	return m.sessions
}

func (m *InMemoryRepositoryManager) Attempts(db dbx.DBTX) attempts.Repository {
	return m.attempts
}

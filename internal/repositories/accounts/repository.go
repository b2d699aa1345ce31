// Package accounts declares the repository contract for farmer account
// records in persistent storage.
package accounts

import (
	"context"

	"github.com/agrisuite/farmauth/internal/models"
)

// Repository defines operations over account records. Uniqueness of
// username and email is enforced by the storage layer; implementations
// return common.ErrDuplicateIdentity when an insert collides.
type Repository interface {
	// Create persists a new account and fills in its storage-assigned
	// fields (ID, RegisteredAt).
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	// GetByUsername returns the account with the given username, or
	// common.ErrNotFound when absent.
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// GetByID returns the account with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// TouchLastLogin stamps the account's last-login time with the
	// storage clock.
	TouchLastLogin(ctx context.Context, id string) error

	// Deactivate clears the active flag. Deactivating an already inactive
	// account is not an error.
	Deactivate(ctx context.Context, id string) error

	// UpdateProfile overwrites the profile columns of the account
	// identified by account.ID.
	UpdateProfile(ctx context.Context, account *models.Account) error

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

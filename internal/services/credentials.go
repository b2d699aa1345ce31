// Package services contains the business rules of the auth subsystem:
// credential verification, session lifecycle, and login-attempt accounting.
// Services hold no state of their own; everything lives in the repositories.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/agrisuite/farmauth/internal/common"
	"github.com/agrisuite/farmauth/internal/dbx"
	"github.com/agrisuite/farmauth/internal/logging"
	"github.com/agrisuite/farmauth/internal/models"
	"github.com/agrisuite/farmauth/internal/repositories/repomanager"
)

// storageErr wraps a repository failure as ErrStorageUnavailable so callers
// can tell retryable infrastructure faults apart from credential outcomes.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
}

// runTx executes fn inside a database transaction. The in-memory manager has
// no database handle; its repositories share one mutex-guarded store, so fn
// runs against it directly.
func runTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, db, nil, fn)
}

// CredentialService persists farmer accounts and verifies passwords.
// Passwords are hashed with bcrypt; the per-account random salt is embedded
// in the hash and the comparison is constant-time.
type CredentialService struct {
	db                *sql.DB
	repos             repomanager.RepositoryManager
	minPasswordLength int
	log               logging.Logger
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(db *sql.DB, repos repomanager.RepositoryManager, minPasswordLength int, log logging.Logger) *CredentialService {
	return &CredentialService{
		db:                db,
		repos:             repos,
		minPasswordLength: minPasswordLength,
		log:               log.With("component", "credentials"),
	}
}

// Register creates an account from the given record and plaintext password.
// The record's PasswordHash field is ignored on input and filled by this
// method. Duplicate usernames and emails surface as ErrDuplicateIdentity;
// the uniqueness check is the storage constraint, so concurrent registrations
// cannot both succeed.
func (s *CredentialService) Register(ctx context.Context, account *models.Account, password string) (string, error) {
	if len(password) < s.minPasswordLength {
		return "", common.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	account.PasswordHash = string(hash)

	repo := s.repos.Accounts(s.db)
	account, err = repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return "", common.ErrDuplicateIdentity
		}
		return "", storageErr(err)
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID, "username", account.Username)
	return account.ID, nil
}

// Verify checks the password for an active account and returns its id,
// stamping the last-login time on success. Missing and deactivated accounts
// both yield ErrUnknownAccount; a hash mismatch yields ErrBadCredential.
func (s *CredentialService) Verify(ctx context.Context, username, password string) (string, error) {
	repo := s.repos.Accounts(s.db)

	account, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn a comparison anyway so absent and present usernames
			// take comparable time
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
			return "", common.ErrUnknownAccount
		}
		return "", storageErr(err)
	}
	if !account.Active {
		// same comparison cost as the live-account path
		_ = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password))
		return "", common.ErrUnknownAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrBadCredential
	}

	if err := repo.TouchLastLogin(ctx, account.ID); err != nil {
		return "", storageErr(err)
	}

	return account.ID, nil
}

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the username does not exist.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Deactivate soft-deletes the account and revokes every active session it
// owns. Both writes run in one transaction, so a storage fault cannot leave
// a deactivated account with sessions that still validate. Idempotent.
func (s *CredentialService) Deactivate(ctx context.Context, accountID string) error {
	err := runTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Accounts(tx).Deactivate(ctx, accountID); err != nil {
			return err
		}
		_, err := s.repos.Sessions(tx).RevokeAll(ctx, accountID)
		return err
	})
	if err != nil {
		return storageErr(err)
	}
	s.log.Info(ctx, "account deactivated", "account_id", accountID)
	return nil
}

// GetProfile returns the account record for the given id.
func (s *CredentialService) GetProfile(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.repos.Accounts(s.db).GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnknownAccount
		}
		return nil, storageErr(err)
	}
	return account, nil
}

// UpdateProfile overwrites the profile fields of the account identified by
// account.ID. Credential fields are not touched.
func (s *CredentialService) UpdateProfile(ctx context.Context, account *models.Account) error {
	if err := s.repos.Accounts(s.db).UpdateProfile(ctx, account); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnknownAccount
		}
		return storageErr(err)
	}
	return nil
}

// ChangePassword verifies the old password and stores a hash of the new one.
// Outstanding sessions are revoked in the same transaction so stolen tokens
// die with the old credential.
func (s *CredentialService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	if len(newPassword) < s.minPasswordLength {
		return common.ErrWeakPassword
	}

	repo := s.repos.Accounts(s.db)
	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUnknownAccount
		}
		return storageErr(err)
	}
	if !account.Active {
		return common.ErrUnknownAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(oldPassword)); err != nil {
		return common.ErrBadCredential
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	err = runTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Accounts(tx).UpdatePassword(ctx, accountID, string(hash)); err != nil {
			return err
		}
		_, err := s.repos.Sessions(tx).RevokeAll(ctx, accountID)
		return err
	})
	if err != nil {
		return storageErr(err)
	}

	s.log.Info(ctx, "password changed", "account_id", accountID)
	return nil
}

package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/agrisuite/farmauth/internal/common"
	"github.com/agrisuite/farmauth/internal/logging"
	"github.com/agrisuite/farmauth/internal/models"
	"github.com/agrisuite/farmauth/internal/repositories/repomanager"
)

// tokenBytes is the number of random bytes per session token. 32 bytes hex
// encoded gives 256 bits of entropy.
const tokenBytes = 32

// SessionService issues, validates, and revokes session tokens. A session
// runs active -> {expired, revoked}; both end states are terminal. Expiry is
// fixed-window: validation never extends it.
type SessionService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	validity time.Duration
	log      logging.Logger
	now      func() time.Time
}

// NewSessionService constructs a SessionService with the given session
// validity duration.
func NewSessionService(db *sql.DB, repos repomanager.RepositoryManager, validity time.Duration, log logging.Logger) *SessionService {
	return &SessionService{
		db:       db,
		repos:    repos,
		validity: validity,
		log:      log.With("component", "sessions"),
		now:      time.Now,
	}
}

// Create issues a new session for the account. The returned session carries
// the bearer token in plaintext; it is shown to the caller once and the
// caller must protect it.
func (s *SessionService) Create(ctx context.Context, accountID, remoteAddr, clientLabel string) (*models.Session, error) {
	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Token:       token,
		Status:      models.SessionActive,
		ExpiresAt:   now.Add(s.validity),
		CreatedAt:   now,
		RemoteAddr:  remoteAddr,
		ClientLabel: clientLabel,
	}

	if err := s.repos.Sessions(s.db).Create(ctx, session); err != nil {
		return nil, storageErr(err)
	}

	s.log.Info(ctx, "session created",
		"session_id", session.ID, "account_id", accountID, "expires_at", session.ExpiresAt)
	return session, nil
}

// Validate resolves a bearer token to its owning account id. An unknown
// token yields ErrSessionNotFound, a revoked one ErrSessionRevoked, and a
// session past its expiry ErrSessionExpired, lazily transitioning its
// stored state. The expiry transition is idempotent, so concurrent
// validations of the same stale token are harmless.
func (s *SessionService) Validate(ctx context.Context, token string) (string, error) {
	repo := s.repos.Sessions(s.db)

	session, err := repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrSessionNotFound
		}
		return "", storageErr(err)
	}

	switch session.Status {
	case models.SessionRevoked:
		return "", common.ErrSessionRevoked
	case models.SessionExpired:
		return "", common.ErrSessionExpired
	}

	if !session.Valid(s.now()) {
		if err := repo.MarkExpired(ctx, session.ID); err != nil {
			s.log.Warn(ctx, "failed to persist expiry transition",
				"session_id", session.ID, "error", err)
		}
		return "", common.ErrSessionExpired
	}

	return session.AccountID, nil
}

// Revoke terminates a session by id. Idempotent.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	if err := s.repos.Sessions(s.db).Revoke(ctx, sessionID); err != nil {
		return storageErr(err)
	}
	s.log.Info(ctx, "session revoked", "session_id", sessionID)
	return nil
}

// RevokeAll terminates every active session belonging to the account.
// Used on deactivation and password change.
func (s *SessionService) RevokeAll(ctx context.Context, accountID string) error {
	n, err := s.repos.Sessions(s.db).RevokeAll(ctx, accountID)
	if err != nil {
		return storageErr(err)
	}
	s.log.Info(ctx, "sessions revoked", "account_id", accountID, "count", n)
	return nil
}

// PurgeExpired deletes sessions whose expiry lies further in the past than
// retention. Purely a housekeeping operation: validation already rejects
// expired tokens without it.
func (s *SessionService) PurgeExpired(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	n, err := s.repos.Sessions(s.db).DeleteExpiredBefore(ctx, cutoff)
	if err != nil {
		return 0, storageErr(err)
	}
	if n > 0 {
		s.log.Info(ctx, "purged expired sessions", "count", n, "cutoff", cutoff)
	}
	return n, nil
}

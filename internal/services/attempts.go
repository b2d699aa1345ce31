package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/agrisuite/farmauth/internal/logging"
	"github.com/agrisuite/farmauth/internal/models"
	"github.com/agrisuite/farmauth/internal/repositories/repomanager"
)

// AttemptService keeps the append-only login attempt log used for abuse
// detection. It only supplies counts; the lockout policy itself (threshold,
// window) is the embedding application's configuration decision.
type AttemptService struct {
	db    *sql.DB
	repos repomanager.RepositoryManager
	log   logging.Logger
}

// NewAttemptService constructs an AttemptService.
func NewAttemptService(db *sql.DB, repos repomanager.RepositoryManager, log logging.Logger) *AttemptService {
	return &AttemptService{
		db:    db,
		repos: repos,
		log:   log.With("component", "attempts"),
	}
}

// Record appends an attempt entry. The only failure it can report is
// storage unavailability.
func (s *AttemptService) Record(ctx context.Context, username, remoteAddr string, success bool, reason string) error {
	attempt := &models.LoginAttempt{
		Username:   username,
		RemoteAddr: remoteAddr,
		Success:    success,
		Reason:     reason,
	}
	if err := s.repos.Attempts(s.db).Record(ctx, attempt); err != nil {
		return storageErr(err)
	}
	return nil
}

// RecentFailures counts failed attempts for the username inside the window
// ending now.
func (s *AttemptService) RecentFailures(ctx context.Context, username string, window time.Duration) (int, error) {
	since := time.Now().Add(-window)
	n, err := s.repos.Attempts(s.db).CountFailuresSince(ctx, username, since)
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

// RecentFailuresByAddr counts failed attempts from the client address inside
// the window ending now.
func (s *AttemptService) RecentFailuresByAddr(ctx context.Context, remoteAddr string, window time.Duration) (int, error) {
	since := time.Now().Add(-window)
	n, err := s.repos.Attempts(s.db).CountFailuresByAddrSince(ctx, remoteAddr, since)
	if err != nil {
		return 0, storageErr(err)
	}
	return n, nil
}

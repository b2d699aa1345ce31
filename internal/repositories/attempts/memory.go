package attempts

import (
	"context"
	"sync"
	"time"

	"github.com/agrisuite/farmauth/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests and by
// embedders that do not need persistence.
type MemoryRepository struct {
	mu      sync.RWMutex
	entries []models.LoginAttempt
	nextID  int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{nextID: 1}
}

func (r *MemoryRepository) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt.ID = r.nextID
	r.nextID++
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}
	r.entries = append(r.entries, *attempt)
	return nil
}

func (r *MemoryRepository) CountFailuresSince(ctx context.Context, username string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.entries {
		if e.Username == username && !e.Success && !e.AttemptedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) CountFailuresByAddrSince(ctx context.Context, remoteAddr string, since time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.entries {
		if e.RemoteAddr == remoteAddr && !e.Success && !e.AttemptedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// All returns a copy of every recorded attempt, oldest first.
// Handy for tests and audit listings.
func (r *MemoryRepository) All() []models.LoginAttempt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.LoginAttempt, len(r.entries))
	copy(out, r.entries)
	return out
}

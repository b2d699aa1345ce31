package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/agrisuite/farmauth/internal/common"
	"github.com/agrisuite/farmauth/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests and by
// embedders that do not need persistence.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.Session
	byToken map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    make(map[string]*models.Session),
		byToken: make(map[string]string),
	}
}

func cloneSession(s *models.Session) *models.Session {
	c := *s
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.byID[session.ID] = cloneSession(session)
	r.byToken[session.Token] = session.ID
	return nil
}

func (r *MemoryRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneSession(r.byID[id]), nil
}

func (r *MemoryRepository) MarkExpired(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byID[id]; ok && s.Status == models.SessionActive {
		s.Status = models.SessionExpired
	}
	return nil
}

func (r *MemoryRepository) Revoke(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.byID[id]; ok && s.Status == models.SessionActive {
		s.Status = models.SessionRevoked
	}
	return nil
}

func (r *MemoryRepository) RevokeAll(ctx context.Context, accountID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, s := range r.byID {
		if s.AccountID == accountID && s.Status == models.SessionActive {
			s.Status = models.SessionRevoked
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, s := range r.byID {
		if s.ExpiresAt.Before(cutoff) {
			delete(r.byToken, s.Token)
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

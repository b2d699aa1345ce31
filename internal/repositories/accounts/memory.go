package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrisuite/farmauth/internal/common"
	"github.com/agrisuite/farmauth/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests and by
// embedders that do not need persistence. The mutex stands in for the
// storage layer's per-row atomicity, including the uniqueness check that
// PostgreSQL enforces with constraints.
type MemoryRepository struct {
	mu       sync.RWMutex
	byID     map[string]*models.Account
	username map[string]string
	email    map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:     make(map[string]*models.Account),
		username: make(map[string]string),
		email:    make(map[string]string),
	}
}

func cloneAccount(a *models.Account) *models.Account {
	c := *a
	if a.LastLoginAt != nil {
		t := *a.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

func (r *MemoryRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.username[account.Username]; ok {
		return nil, common.ErrDuplicateIdentity
	}
	if _, ok := r.email[account.Email]; ok {
		return nil, common.ErrDuplicateIdentity
	}

	account.ID = uuid.NewString()
	account.RegisteredAt = time.Now()
	account.Active = true

	r.byID[account.ID] = cloneAccount(account)
	r.username[account.Username] = account.ID
	r.email[account.Email] = account.ID

	return account, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.username[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneAccount(r.byID[id]), nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneAccount(a), nil
}

func (r *MemoryRepository) TouchLastLogin(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.byID[id]; ok {
		now := time.Now()
		a.LastLoginAt = &now
	}
	return nil
}

func (r *MemoryRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a, ok := r.byID[id]; ok {
		a.Active = false
	}
	return nil
}

func (r *MemoryRepository) UpdateProfile(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[account.ID]
	if !ok {
		return common.ErrNotFound
	}
	a.FullName = account.FullName
	a.FarmName = account.FarmName
	a.District = account.District
	a.Village = account.Village
	a.Phone = account.Phone
	a.CropTypes = account.CropTypes
	a.FarmArea = account.FarmArea
	return nil
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

package users

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophgate/internal/common"
	"github.com/dmitrijs2005/gophgate/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps users in process memory. It backs the "memory"
// DSN and tests, with the same contract as PostgresRepository.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.User
	hasher models.PasswordHasher
	now    func() time.Time
}

func NewMemoryRepository(hasher models.PasswordHasher) *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*models.User),
		hasher: hasher,
		now:    time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	if err := user.BeforeWrite(r.hasher); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkEmailLocked(user.Email, ""); err != nil {
		return nil, err
	}

	now := r.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.byID[user.ID] = clone(user)

	return user, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u.Sanitized(), nil
}

func (r *MemoryRepository) FindByEmail(_ context.Context, email string, withPassword bool) (*models.User, error) {
	email = models.NormalizeEmail(email)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email != email {
			continue
		}
		if withPassword {
			return clone(u), nil
		}
		return u.Sanitized(), nil
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Save(_ context.Context, user *models.User) (*models.User, error) {
	if err := user.BeforeWrite(r.hasher); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := r.checkEmailLocked(user.Email, user.ID); err != nil {
		return nil, err
	}

	next := clone(user)
	if next.PasswordHash == "" {
		next.PasswordHash = stored.PasswordHash
	}
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = r.now()
	r.byID[user.ID] = next

	user.CreatedAt = next.CreatedAt
	user.UpdatedAt = next.UpdatedAt
	return user, nil
}

func (r *MemoryRepository) checkEmailLocked(email, exceptID string) error {
	for id, u := range r.byID {
		if id != exceptID && u.Email == email {
			return &common.DuplicateEmailError{Detail: fmt.Sprintf("Key (email)=(%s) already exists.", email)}
		}
	}
	return nil
}

func clone(u *models.User) *models.User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	return &c
}

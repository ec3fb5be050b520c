package user

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

// memoryRepository is a mutex-guarded in-memory user store. It backs tests
// and database-less runs; all balance checks and mutations happen under one
// lock so they are atomic with respect to concurrent payments.
type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewMemoryRepository creates an empty in-memory user repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]*User)}
}

func (r *memoryRepository) CreateUser(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return apperr.Validationf("email %s is already registered", u.Email)
		}
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.users[u.ID.String()] = cloneUser(u)
	return nil
}

func (r *memoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user %s not found", id)
	}
	return cloneUser(u), nil
}

func (r *memoryRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, apperr.NotFoundf("no user with email %s", email)
}

func (r *memoryRepository) UpdateProfile(ctx context.Context, id string, name, phone string, addr *common.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.NotFoundf("user %s not found", id)
	}
	u.Name = name
	u.Phone = phone
	if addr != nil {
		copied := *addr
		u.Address = &copied
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*User
	for _, u := range r.users {
		if u.Role == role {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *memoryRepository) AdjustBalance(ctx context.Context, id string, delta float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return 0, apperr.NotFoundf("user %s not found", id)
	}
	if u.Balance+delta < 0 {
		return u.Balance, apperr.Resourcef(
			"insufficient balance: required %.2f, available %.2f", -delta, u.Balance)
	}
	u.Balance += delta
	u.UpdatedAt = time.Now()
	return u.Balance, nil
}

func (r *memoryRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return apperr.NotFoundf("user %s not found", id)
	}
	u.IsAvailable = available
	u.UpdatedAt = time.Now()
	return nil
}

func cloneUser(u *User) *User {
	copied := *u
	if u.Address != nil {
		addr := *u.Address
		copied.Address = &addr
	}
	return &copied
}

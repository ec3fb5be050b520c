package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/martminds/martminds-backend/internal/apperr"
)

type memoryRepository struct {
	mu     sync.RWMutex
	stores map[string]*Store
}

// NewMemoryRepository creates an empty in-memory store repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{stores: make(map[string]*Store)}
}

func (r *memoryRepository) Create(ctx context.Context, s *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	copied := *s
	r.stores[s.ID.String()] = &copied
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, apperr.NotFoundf("store %s not found", id)
	}
	copied := *s
	return &copied, nil
}

func (r *memoryRepository) List(ctx context.Context, activeOnly bool) ([]*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Store
	for _, s := range r.stores {
		if activeOnly && !s.IsActive {
			continue
		}
		copied := *s
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) Update(ctx context.Context, s *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.stores[s.ID.String()]; !ok {
		return apperr.NotFoundf("store %s not found", s.ID)
	}
	s.UpdatedAt = time.Now()
	copied := *s
	r.stores[s.ID.String()] = &copied
	return nil
}

func (r *memoryRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return apperr.NotFoundf("store %s not found", id)
	}
	s.IsActive = active
	s.UpdatedAt = time.Now()
	return nil
}

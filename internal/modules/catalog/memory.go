package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/martminds/martminds-backend/internal/apperr"
)

// memoryRepository keeps products in a mutex-guarded map. One lock covers
// the whole Reserve check-then-commit, which makes the reservation atomic
// across the item set.
type memoryRepository struct {
	mu       sync.RWMutex
	products map[string]*Product
}

// NewMemoryRepository creates an empty in-memory product repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{products: make(map[string]*Product)}
}

func (r *memoryRepository) Create(ctx context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	copied := *p
	r.products[p.ID.String()] = &copied
	return nil
}

func (r *memoryRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	copied := *p
	return &copied, nil
}

func (r *memoryRepository) List(ctx context.Context, storeID, category string) ([]*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Product
	for _, p := range r.products {
		if storeID != "" && p.StoreID.String() != storeID {
			continue
		}
		if category != "" && p.Category != category {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) Update(ctx context.Context, p *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[p.ID.String()]
	if !ok {
		return apperr.NotFoundf("product %s not found", p.ID)
	}
	existing.Name = p.Name
	existing.Description = p.Description
	existing.Category = p.Category
	existing.Price = p.Price
	existing.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) AdjustStock(ctx context.Context, id string, delta int) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	if p.Stock+delta < 0 {
		return nil, apperr.Resourcef(
			"insufficient stock for %s: requested %d, available %d", p.Name, -delta, p.Stock)
	}
	p.Stock += delta
	p.UpdatedAt = time.Now()
	copied := *p
	return &copied, nil
}

func (r *memoryRepository) Reserve(ctx context.Context, items []Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Phase one: validate everything before touching anything.
	for _, it := range items {
		p, ok := r.products[it.ProductID.String()]
		if !ok {
			return apperr.NotFoundf("product %s not found", it.ProductID)
		}
		if p.Stock < it.Quantity {
			return apperr.Resourcef(
				"insufficient stock for %s: requested %d, available %d", p.Name, it.Quantity, p.Stock)
		}
	}

	// Phase two: commit the decrements.
	now := time.Now()
	for _, it := range items {
		p := r.products[it.ProductID.String()]
		p.Stock -= it.Quantity
		p.UpdatedAt = now
	}
	return nil
}

func (r *memoryRepository) Release(ctx context.Context, items []Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, it := range items {
		p, ok := r.products[it.ProductID.String()]
		if !ok {
			return apperr.NotFoundf("product %s not found", it.ProductID)
		}
		p.Stock += it.Quantity
		p.UpdatedAt = now
	}
	return nil
}

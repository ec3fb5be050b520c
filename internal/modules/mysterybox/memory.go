package mysterybox

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
)

type memoryRepo struct {
	mu        sync.RWMutex
	boxes     map[uuid.UUID]*Box
	purchases map[uuid.UUID]*Purchase
}

// NewMemoryRepository returns an in-memory Repository, used when no
// database is configured and in tests.
func NewMemoryRepository() Repository {
	return &memoryRepo{
		boxes:     make(map[uuid.UUID]*Box),
		purchases: make(map[uuid.UUID]*Purchase),
	}
}

func (r *memoryRepo) CreateBox(ctx context.Context, b *Box) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.boxes[b.ID]; ok {
		return apperr.Validationf("box %s already exists", b.ID)
	}
	r.boxes[b.ID] = cloneBox(b)
	return nil
}

func (r *memoryRepo) GetBoxByID(ctx context.Context, id uuid.UUID) (*Box, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.boxes[id]
	if !ok {
		return nil, apperr.NotFoundf("box %s not found", id)
	}
	return cloneBox(b), nil
}

func (r *memoryRepo) ListBoxes(ctx context.Context, storeID uuid.UUID) ([]*Box, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Box
	for _, b := range r.boxes {
		if storeID == uuid.Nil || b.StoreID == storeID {
			out = append(out, cloneBox(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) DecrementStock(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.boxes[id]
	if !ok {
		return apperr.NotFoundf("box %s not found", id)
	}
	if b.Stock < 1 {
		return apperr.Resourcef("box %s is out of stock", b.Name)
	}
	b.Stock--
	return nil
}

func (r *memoryRepo) RecordPurchase(ctx context.Context, p *Purchase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.purchases[p.ID]; ok {
		return apperr.Validationf("purchase %s already exists", p.ID)
	}
	cp := *p
	r.purchases[p.ID] = &cp
	return nil
}

func (r *memoryRepo) ListPurchasesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Purchase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Purchase
	for _, p := range r.purchases {
		if p.CustomerID == customerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneBox(b *Box) *Box {
	cp := *b
	cp.Candidates = append([]uuid.UUID(nil), b.Candidates...)
	return &cp
}

package payment

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
)

type memoryRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*Payment
}

// NewMemoryRepository returns an in-memory Repository, used when no
// database is configured and in tests.
func NewMemoryRepository() Repository {
	return &memoryRepo{payments: make(map[uuid.UUID]*Payment)}
}

func (r *memoryRepo) CreatePayment(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.ID]; ok {
		return apperr.Validationf("payment %s already exists", p.ID)
	}
	r.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *memoryRepo) GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.payments[id]
	if !ok {
		return nil, apperr.NotFoundf("payment %s not found", id)
	}
	return clonePayment(p), nil
}

func (r *memoryRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error) {
	return r.list(func(p *Payment) bool { return p.OrderID == orderID })
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error) {
	return r.list(func(p *Payment) bool { return p.UserID == userID })
}

func (r *memoryRepo) ListByStatus(ctx context.Context, status Status) ([]*Payment, error) {
	return r.list(func(p *Payment) bool { return p.Status == status })
}

func (r *memoryRepo) list(match func(*Payment) bool) ([]*Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Payment
	for _, p := range r.payments {
		if match(p) {
			out = append(out, clonePayment(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, p *Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.payments[p.ID]; !ok {
		return apperr.NotFoundf("payment %s not found", p.ID)
	}
	r.payments[p.ID] = clonePayment(p)
	return nil
}

func (r *memoryRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.payments[id]
	if !ok {
		return false, apperr.NotFoundf("payment %s not found", id)
	}
	if p.Status != from {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = time.Now()
	return true, nil
}

func clonePayment(p *Payment) *Payment {
	cp := *p
	if p.Cash != nil {
		d := *p.Cash
		cp.Cash = &d
	}
	if p.Card != nil {
		d := *p.Card
		cp.Card = &d
	}
	if p.EWallet != nil {
		d := *p.EWallet
		cp.EWallet = &d
	}
	return &cp
}

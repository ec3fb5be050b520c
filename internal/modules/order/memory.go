package order

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
)

type memoryRepo struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*Order
}

// NewMemoryRepository returns an in-memory Repository, used when no
// database is configured and in tests.
func NewMemoryRepository() Repository {
	return &memoryRepo{orders: make(map[uuid.UUID]*Order)}
}

func (r *memoryRepo) CreateOrder(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; ok {
		return apperr.Validationf("order %s already exists", o.ID)
	}
	for _, existing := range r.orders {
		if existing.OrderNumber == o.OrderNumber {
			return fmt.Errorf("order number %s: %w", o.OrderNumber, errDuplicateNumber)
		}
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *memoryRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, apperr.NotFoundf("order %s not found", id)
	}
	return cloneOrder(o), nil
}

func (r *memoryRepo) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, o := range r.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return nil, apperr.NotFoundf("order %s not found", number)
}

func (r *memoryRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.CustomerID == customerID })
}

func (r *memoryRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.StoreID == storeID })
}

func (r *memoryRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.DriverID != nil && *o.DriverID == driverID })
}

func (r *memoryRepo) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return r.list(func(o *Order) bool { return o.Status == status })
}

func (r *memoryRepo) list(match func(*Order) bool) ([]*Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Order
	for _, o := range r.orders {
		if match(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepo) Update(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[o.ID]; !ok {
		return apperr.NotFoundf("order %s not found", o.ID)
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func cloneOrder(o *Order) *Order {
	cp := *o
	if o.DriverID != nil {
		id := *o.DriverID
		cp.DriverID = &id
	}
	cp.Items = make([]*OrderItem, len(o.Items))
	for i, item := range o.Items {
		itemCp := *item
		cp.Items[i] = &itemCp
	}
	return &cp
}

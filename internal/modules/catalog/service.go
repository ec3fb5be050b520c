package catalog

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/validate"
)

// Service defines catalog business logic. FindProduct, Reserve and Release
// are the narrow surface the order engine consumes.
type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, storeID, category string) ([]*Product, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error)
	AdjustStock(ctx context.Context, id string, delta int) (*Product, error)

	// FindProduct is the catalog lookup used when pricing order items.
	FindProduct(ctx context.Context, id string) (*Product, error)

	// Reserve atomically validates and decrements stock for a whole order.
	Reserve(ctx context.Context, items []Reservation) error

	// Release returns reserved stock, used by the restock-on-cancel policy.
	Release(ctx context.Context, items []Reservation) error
}

type service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService creates a new catalog service. cache may be nil.
func NewService(repo Repository, cache *Cache) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, apperr.Validationf("invalid store_id: %s", req.StoreID)
	}
	if !validate.NotEmpty(req.Name) {
		return nil, apperr.Validationf("product name is required")
	}
	if !validate.Price(req.Price) {
		return nil, apperr.Validationf("price must be greater than 0")
	}
	if req.Stock < 0 {
		return nil, apperr.Validationf("stock cannot be negative")
	}

	p := &Product{
		ID:          uuid.New(),
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProduct serves reads through the cache; concurrent misses for the same
// product collapse into one repository hit.
func (s *service) GetProduct(ctx context.Context, id string) (*Product, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		return p, nil
	}

	v, err, _ := s.group.Do(id, func() (interface{}, error) {
		p, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Product), nil
}

func (s *service) FindProduct(ctx context.Context, id string) (*Product, error) {
	// Pricing reads go straight to the repository: a stale cached stock
	// count must not feed the reservation decision.
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListProducts(ctx context.Context, storeID, category string) ([]*Product, error) {
	return s.repo.List(ctx, storeID, category)
}

func (s *service) UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !validate.NotEmpty(req.Name) {
		return nil, apperr.Validationf("product name is required")
	}
	if !validate.Price(req.Price) {
		return nil, apperr.Validationf("price must be greater than 0")
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Category = req.Category
	p.Price = req.Price
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return p, nil
}

func (s *service) AdjustStock(ctx context.Context, id string, delta int) (*Product, error) {
	if delta == 0 {
		return nil, apperr.Validationf("stock delta cannot be zero")
	}
	p, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, id)
	return p, nil
}

func (s *service) Reserve(ctx context.Context, items []Reservation) error {
	if len(items) == 0 {
		return apperr.Validationf("nothing to reserve")
	}
	for _, it := range items {
		if !validate.Quantity(it.Quantity) {
			return apperr.Validationf("reservation quantity must be at least 1")
		}
	}
	if err := s.repo.Reserve(ctx, items); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productIDs(items)...)
	return nil
}

func (s *service) Release(ctx context.Context, items []Reservation) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.repo.Release(ctx, items); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productIDs(items)...)
	return nil
}

func productIDs(items []Reservation) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ProductID.String()
	}
	return ids
}

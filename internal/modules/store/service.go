package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/validate"
)

// Service defines store business logic.
type Service interface {
	CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error)
	GetStore(ctx context.Context, id string) (*Store, error)
	ListStores(ctx context.Context, activeOnly bool) ([]*Store, error)
	UpdateStore(ctx context.Context, id string, req UpdateStoreRequest) (*Store, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type service struct{ repo Repository }

// NewService creates a new store service.
func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) CreateStore(ctx context.Context, req CreateStoreRequest) (*Store, error) {
	if !validate.NotEmpty(req.Name) {
		return nil, apperr.Validationf("store name is required")
	}
	if req.Phone != "" && !validate.Phone(req.Phone) {
		return nil, apperr.Validationf("invalid phone number (expected 10-15 digits)")
	}

	st := &Store{
		ID:       uuid.New(),
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) GetStore(ctx context.Context, id string) (*Store, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListStores(ctx context.Context, activeOnly bool) ([]*Store, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) UpdateStore(ctx context.Context, id string, req UpdateStoreRequest) (*Store, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != "" {
		st.Name = req.Name
	}
	if req.Phone != "" {
		if !validate.Phone(req.Phone) {
			return nil, apperr.Validationf("invalid phone number (expected 10-15 digits)")
		}
		st.Phone = req.Phone
	}
	if req.Address != nil {
		st.Address = *req.Address
	}
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) SetActive(ctx context.Context, id string, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

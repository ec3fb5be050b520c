package user

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/validate"
)

type service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if !validate.NotEmpty(req.Name) {
		return nil, apperr.Validationf("name is required")
	}
	if !validate.Email(req.Email) {
		return nil, apperr.Validationf("invalid email address")
	}
	if !validate.Password(req.Password) {
		return nil, apperr.Validationf("password must be at least 8 characters")
	}
	if req.Phone != "" && !validate.Phone(req.Phone) {
		return nil, apperr.Validationf("invalid phone number (expected 10-15 digits)")
	}

	role := Role(strings.ToUpper(req.Role))
	if role == "" {
		role = RoleCustomer
	}
	switch role {
	case RoleCustomer, RoleDriver, RoleAdmin:
	default:
		return nil, apperr.Validationf("unknown role: %s", req.Role)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internalf(err, "hash password")
	}

	u := &User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hashedPassword),
		Phone:        req.Phone,
		Role:         role,
		Address:      req.Address,
		IsAvailable:  role == RoleDriver, // a new driver starts free
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error) {
	if !validate.NotEmpty(req.Name) {
		return nil, apperr.Validationf("name is required")
	}
	if req.Phone != "" && !validate.Phone(req.Phone) {
		return nil, apperr.Validationf("invalid phone number (expected 10-15 digits)")
	}
	if err := s.repo.UpdateProfile(ctx, id, req.Name, req.Phone, req.Address); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) TopUp(ctx context.Context, id string, amount float64) (*User, error) {
	if !validate.Price(amount) {
		return nil, apperr.Validationf("top-up amount must be greater than 0")
	}
	if _, err := s.repo.AdjustBalance(ctx, id, amount); err != nil {
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

func (s *service) Withdraw(ctx context.Context, id string, amount float64) error {
	if !validate.Price(amount) {
		return apperr.Validationf("withdrawal amount must be greater than 0")
	}
	_, err := s.repo.AdjustBalance(ctx, id, -amount)
	return err
}

func (s *service) Credit(ctx context.Context, id string, amount float64) error {
	if !validate.Price(amount) {
		return apperr.Validationf("credit amount must be greater than 0")
	}
	_, err := s.repo.AdjustBalance(ctx, id, amount)
	return err
}

package user

import (
	"context"

	"github.com/martminds/martminds-backend/internal/common"
)

// Service defines the interface for user-related business logic.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*User, error)

	// TopUp adds funds to the user's stored balance.
	TopUp(ctx context.Context, id string, amount float64) (*User, error)

	// Withdraw and Credit move stored-balance funds; they back the internal
	// e-wallet payment provider.
	Withdraw(ctx context.Context, id string, amount float64) error
	Credit(ctx context.Context, id string, amount float64) error
}

// RegisterRequest holds the data for creating an account.
type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Phone    string          `json:"phone,omitempty"`
	Role     string          `json:"role,omitempty"` // defaults to CUSTOMER
	Address  *common.Address `json:"address,omitempty"`
}

// UpdateProfileRequest holds profile fields a user may change.
type UpdateProfileRequest struct {
	Name    string          `json:"name"`
	Phone   string          `json:"phone,omitempty"`
	Address *common.Address `json:"address,omitempty"`
}

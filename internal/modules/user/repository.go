package user

import (
	"context"

	"github.com/martminds/martminds-backend/internal/common"
)

// Repository defines data access for users.
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// UpdateProfile changes name, phone and address.
	UpdateProfile(ctx context.Context, id string, name, phone string, addr *common.Address) error

	// ListByRole returns all users with the given role.
	ListByRole(ctx context.Context, role Role) ([]*User, error)

	// AdjustBalance applies a signed delta to the user's stored balance and
	// returns the new balance. The check and the mutation are atomic; a
	// debit that would take the balance below zero fails with a resource
	// error naming the deficit.
	AdjustBalance(ctx context.Context, id string, delta float64) (float64, error)

	// SetAvailability marks a driver as free or busy.
	SetAvailability(ctx context.Context, id string, available bool) error
}

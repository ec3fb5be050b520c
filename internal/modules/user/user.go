package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/common"
)

// Role determines what a user may do in the marketplace.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleDriver   Role = "DRIVER"
	RoleAdmin    Role = "ADMIN"
)

// User represents an account in the system. Balance is the stored MartMinds
// wallet debited by internal e-wallet payments; IsAvailable only applies to
// drivers.
type User struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Phone        string          `json:"phone,omitempty"`
	Role         Role            `json:"role"`
	Balance      float64         `json:"balance"`
	Address      *common.Address `json:"address,omitempty"`
	IsAvailable  bool            `json:"is_available,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsDriver reports whether the user can be assigned deliveries.
func (u *User) IsDriver() bool { return u.Role == RoleDriver }

package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/common"
)

// Store represents a grocery store fulfilling orders on the platform.
type Store struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Address   common.Address `json:"address"`
	Phone     string         `json:"phone,omitempty"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// CreateStoreRequest holds data for registering a store.
type CreateStoreRequest struct {
	Name    string         `json:"name"`
	Address common.Address `json:"address"`
	Phone   string         `json:"phone,omitempty"`
}

// UpdateStoreRequest holds partial updates to a store. Empty fields keep
// their current value.
type UpdateStoreRequest struct {
	Name    string          `json:"name,omitempty"`
	Address *common.Address `json:"address,omitempty"`
	Phone   string          `json:"phone,omitempty"`
}

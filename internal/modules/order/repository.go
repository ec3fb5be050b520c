package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists orders together with their items.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error)
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]*Order, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
}

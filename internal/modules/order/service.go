package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/catalog"
)

// Catalog is the slice of the catalog module the order flow needs: priced
// lookups that bypass the cache plus atomic stock reservation.
type Catalog interface {
	FindProduct(ctx context.Context, id string) (*catalog.Product, error)
	Reserve(ctx context.Context, reservations []catalog.Reservation) error
	Release(ctx context.Context, reservations []catalog.Reservation) error
}

// ItemRequest is one requested line of a new order.
type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// PlaceOrderRequest carries everything needed to create an order. The
// customer is taken from the authenticated actor.
type PlaceOrderRequest struct {
	StoreID         uuid.UUID      `json:"store_id"`
	DeliveryAddress common.Address `json:"delivery_address"`
	Items           []ItemRequest  `json:"items"`
}

// Config holds order flow policy knobs.
type Config struct {
	// RestockOnCancel controls whether cancelling an order returns its
	// reserved stock to the catalog.
	RestockOnCancel bool
}

// Service exposes the order lifecycle.
type Service interface {
	PlaceOrder(ctx context.Context, actor common.Actor, req PlaceOrderRequest) (*Order, error)
	GetOrder(ctx context.Context, actor common.Actor, id uuid.UUID) (*Order, error)
	GetOrderByNumber(ctx context.Context, actor common.Actor, number string) (*Order, error)
	ListByCustomer(ctx context.Context, actor common.Actor, customerID uuid.UUID) ([]*Order, error)
	ListByStore(ctx context.Context, actor common.Actor, storeID uuid.UUID) ([]*Order, error)
	ListByDriver(ctx context.Context, actor common.Actor, driverID uuid.UUID) ([]*Order, error)
	AddItem(ctx context.Context, actor common.Actor, orderID uuid.UUID, item ItemRequest) (*Order, error)
	RemoveItem(ctx context.Context, actor common.Actor, orderID, itemID uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, actor common.Actor, orderID uuid.UUID, next Status) (*Order, error)
	AssignDriver(ctx context.Context, actor common.Actor, orderID, driverID uuid.UUID) (*Order, error)
	MarkDelivered(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*Order, error)
	CancelOrder(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*Order, error)
}

package catalog

import "context"

// Repository defines data access for products. Reserve and Release are the
// stock-mutation primitives of the order engine: both are atomic across the
// whole reservation set, so two orders competing for the last unit of a
// product cannot both succeed.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, storeID, category string) ([]*Product, error)
	Update(ctx context.Context, p *Product) error

	// AdjustStock applies a signed delta to one product's stock; the stock
	// never goes below zero.
	AdjustStock(ctx context.Context, id string, delta int) (*Product, error)

	// Reserve validates every reservation against current stock before any
	// decrement; if one product falls short the whole set is rejected and
	// no stock is touched.
	Reserve(ctx context.Context, items []Reservation) error

	// Release returns previously reserved quantities to stock.
	Release(ctx context.Context, items []Reservation) error
}

package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a purchasable item listed by a store. Stock only ever moves
// through signed deltas and never goes negative.
type Product struct {
	ID          uuid.UUID `json:"id"`
	StoreID     uuid.UUID `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Available reports whether the product has any stock left.
func (p *Product) Available() bool { return p.Stock > 0 }

// Reservation asks for a quantity of one product as part of an order's
// all-or-nothing stock reservation.
type Reservation struct {
	ProductID uuid.UUID
	Quantity  int
}

// CreateProductRequest holds the data for listing a product.
type CreateProductRequest struct {
	StoreID     string  `json:"store_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// UpdateProductRequest holds mutable product fields.
type UpdateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
}

package mysterybox

import (
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/validate"
)

// Box is a surprise bundle sold at a fixed price. Each purchase reveals one
// random product from the candidate list.
type Box struct {
	ID          uuid.UUID   `json:"id"`
	StoreID     uuid.UUID   `json:"store_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category"`
	Price       float64     `json:"price"`
	Stock       int         `json:"stock"`
	Candidates  []uuid.UUID `json:"candidates"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Purchase records one box sale and the product it revealed.
type Purchase struct {
	ID         uuid.UUID `json:"id"`
	BoxID      uuid.UUID `json:"box_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	ProductID  uuid.UUID `json:"product_id"`
	PricePaid  float64   `json:"price_paid"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateBoxRequest holds the data for listing a new box.
type CreateBoxRequest struct {
	StoreID     string      `json:"store_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Category    string      `json:"category"`
	Price       float64     `json:"price"`
	Stock       int         `json:"stock"`
	Candidates  []uuid.UUID `json:"candidates"`
}

func (r CreateBoxRequest) validate() error {
	if !validate.NotEmpty(r.Name) {
		return apperr.Validationf("box name cannot be empty")
	}
	if !validate.NotEmpty(r.Category) {
		return apperr.Validationf("box category cannot be empty")
	}
	if !validate.Price(r.Price) {
		return apperr.Validationf("box price must be greater than 0")
	}
	if r.Stock < 0 {
		return apperr.Validationf("box stock cannot be negative")
	}
	if len(r.Candidates) == 0 {
		return apperr.Validationf("box must have at least one candidate product")
	}
	return nil
}

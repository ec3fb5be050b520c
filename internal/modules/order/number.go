package order

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// errDuplicateNumber reports an order-number collision on insert.
// PlaceOrder retries with a fresh number.
var errDuplicateNumber = errors.New("duplicate order number")

// generateOrderNumber produces a human-friendly reference in the form
// ORD-YYYYMMDD-XXXXXX. Uniqueness is enforced by the repository, not here.
func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%s-%06d", time.Now().Format("20060102"), rand.Intn(1000000))
}

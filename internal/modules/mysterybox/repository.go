package mysterybox

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists boxes and their purchases.
type Repository interface {
	CreateBox(ctx context.Context, b *Box) error
	GetBoxByID(ctx context.Context, id uuid.UUID) (*Box, error)
	ListBoxes(ctx context.Context, storeID uuid.UUID) ([]*Box, error)

	// DecrementStock atomically takes one box off the shelf; selling the
	// last one twice fails with a resource error.
	DecrementStock(ctx context.Context, id uuid.UUID) error

	RecordPurchase(ctx context.Context, p *Purchase) error
	ListPurchasesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Purchase, error)
}

package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists payments. UpdateStatusFrom is the compare-and-swap
// used to enforce at-most-once settlement.
type Repository interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error)
	ListByStatus(ctx context.Context, status Status) ([]*Payment, error)
	Update(ctx context.Context, p *Payment) error

	// UpdateStatusFrom atomically moves the payment from one status to
	// another and reports whether the swap happened. A false return means
	// another caller got there first.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}

package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/order"
)

// Orders is the slice of the order module the payment flow needs,
// satisfied by order.Repository.
type Orders interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
}

// CreatePaymentRequest starts a payment for an order. The amount is always
// the order total; callers cannot pick their own.
type CreatePaymentRequest struct {
	OrderID uuid.UUID      `json:"order_id"`
	Method  Method         `json:"method"`
	Details DetailsRequest `json:"details"`
}

// Service exposes the payment lifecycle.
type Service interface {
	CreatePayment(ctx context.Context, actor common.Actor, req CreatePaymentRequest) (*Payment, error)

	// ProcessPayment settles a PENDING payment at most once. On success the
	// order is confirmed; a failed settlement leaves the payment PENDING
	// so it can be retried or cancelled.
	ProcessPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error)

	// RefundPayment reverses a SUCCESS payment.
	RefundPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error)

	// CancelPayment abandons a PENDING payment before any money moves.
	CancelPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error)

	GetPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error)
	ListByOrder(ctx context.Context, actor common.Actor, orderID uuid.UUID) ([]*Payment, error)
	ListByUser(ctx context.Context, actor common.Actor, userID uuid.UUID) ([]*Payment, error)

	// ListByStatus is a fleet-wide view, admin only.
	ListByStatus(ctx context.Context, actor common.Actor, status Status) ([]*Payment, error)

	// TotalPaidByUser sums the user's SUCCESS payments.
	TotalPaidByUser(ctx context.Context, actor common.Actor, userID uuid.UUID) (float64, error)
}

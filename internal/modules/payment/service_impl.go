package payment

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/order"
	"github.com/martminds/martminds-backend/internal/platform/events"
)

type service struct {
	repo      Repository
	orders    Orders
	registry  *Registry
	publisher events.Publisher
}

// NewService wires the payment service. A nil publisher disables events.
func NewService(repo Repository, orders Orders, registry *Registry, publisher events.Publisher) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{repo: repo, orders: orders, registry: registry, publisher: publisher}
}

func (s *service) CreatePayment(ctx context.Context, actor common.Actor, req CreatePaymentRequest) (*Payment, error) {
	o, err := s.orders.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Is(o.CustomerID) {
		return nil, apperr.Authorizationf("not allowed to pay for this order")
	}
	if o.Status != order.StatusPending {
		return nil, apperr.Statef("order %s is %s; payment can only be created while PENDING", o.OrderNumber, o.Status)
	}
	existing, err := s.repo.ListByOrder(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	for _, prev := range existing {
		if prev.Status == StatusPending || prev.Status == StatusSuccess {
			return nil, apperr.Statef("order %s already has an active payment", o.OrderNumber)
		}
	}

	proc, err := s.registry.Get(req.Method)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	p := &Payment{
		ID:        uuid.New(),
		OrderID:   o.ID,
		UserID:    o.CustomerID,
		Method:    req.Method,
		Amount:    o.Total,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := proc.Prepare(p, req.Details); err != nil {
		return nil, err
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	s.publish(ctx, p)
	return p, nil
}

func (s *service) ProcessPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.ownedPayment(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPending {
		return nil, apperr.Statef("payment already processed")
	}
	o, err := s.orders.GetOrderByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPending {
		return nil, apperr.Statef("order %s is %s; payment can only settle while PENDING", o.OrderNumber, o.Status)
	}
	// The order may have been edited since the payment was created.
	if p.Amount != o.Total {
		return nil, apperr.Statef("order %s total changed to %.2f since the payment was created; cancel the payment and create a new one", o.OrderNumber, o.Total)
	}

	proc, err := s.registry.Get(p.Method)
	if err != nil {
		return nil, err
	}

	// Settle first, then claim the status with a compare-and-swap. Losing
	// the swap means a concurrent caller settled the same payment; reverse
	// our settlement so money moves exactly once.
	if err := proc.Settle(ctx, p); err != nil {
		return nil, err
	}
	swapped, err := s.repo.UpdateStatusFrom(ctx, p.ID, StatusPending, StatusSuccess)
	if err != nil || !swapped {
		// Either a concurrent caller claimed the payment or the store
		// failed. In both cases the payment is not SUCCESS, so reverse our
		// settlement; the caller can retry against a clean slate.
		if refundErr := proc.Refund(ctx, p); refundErr != nil {
			log.Printf("payment: failed to reverse settlement of %s: %v", p.ID, refundErr)
		}
		if err != nil {
			return nil, err
		}
		return nil, apperr.Statef("payment already processed")
	}
	p.Status = StatusSuccess
	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		// Status already swapped; details like cash change are best effort.
		log.Printf("payment: failed to persist settlement details for %s: %v", p.ID, err)
	}

	s.confirmOrder(ctx, o)
	s.publish(ctx, p)
	return p, nil
}

func (s *service) RefundPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.ownedPayment(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusSuccess {
		return nil, apperr.Statef("only successful payments can be refunded (current: %s)", p.Status)
	}
	proc, err := s.registry.Get(p.Method)
	if err != nil {
		return nil, err
	}
	swapped, err := s.repo.UpdateStatusFrom(ctx, p.ID, StatusSuccess, StatusRefunded)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, apperr.Statef("payment already refunded")
	}
	if err := proc.Refund(ctx, p); err != nil {
		// No money moved, so put the status back to SUCCESS and let the
		// caller retry the refund.
		if _, revertErr := s.repo.UpdateStatusFrom(ctx, p.ID, StatusRefunded, StatusSuccess); revertErr != nil {
			log.Printf("payment: refund of %s failed and status could not be restored: %v", p.ID, revertErr)
		}
		return nil, err
	}
	p.Status = StatusRefunded
	p.UpdatedAt = time.Now()
	s.publish(ctx, p)
	return p, nil
}

func (s *service) CancelPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.ownedPayment(ctx, actor, paymentID)
	if err != nil {
		return nil, err
	}
	swapped, err := s.repo.UpdateStatusFrom(ctx, p.ID, StatusPending, StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, apperr.Statef("only pending payments can be cancelled (current: %s)", p.Status)
	}
	p.Status = StatusCancelled
	p.UpdatedAt = time.Now()
	s.publish(ctx, p)
	return p, nil
}

func (s *service) GetPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error) {
	return s.ownedPayment(ctx, actor, paymentID)
}

func (s *service) ListByOrder(ctx context.Context, actor common.Actor, orderID uuid.UUID) ([]*Payment, error) {
	o, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Is(o.CustomerID) {
		return nil, apperr.Authorizationf("not allowed to view these payments")
	}
	return s.repo.ListByOrder(ctx, orderID)
}

func (s *service) ListByUser(ctx context.Context, actor common.Actor, userID uuid.UUID) ([]*Payment, error) {
	if !actor.IsAdmin() && !actor.Is(userID) {
		return nil, apperr.Authorizationf("not allowed to view these payments")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListByStatus(ctx context.Context, actor common.Actor, status Status) ([]*Payment, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorizationf("only admins can list payments by status")
	}
	if !validStatus(status) {
		return nil, apperr.Validationf("unknown payment status %q", status)
	}
	return s.repo.ListByStatus(ctx, status)
}

func (s *service) TotalPaidByUser(ctx context.Context, actor common.Actor, userID uuid.UUID) (float64, error) {
	payments, err := s.ListByUser(ctx, actor, userID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range payments {
		if p.Status == StatusSuccess {
			total += p.Amount
		}
	}
	return total, nil
}

func (s *service) ownedPayment(ctx context.Context, actor common.Actor, paymentID uuid.UUID) (*Payment, error) {
	p, err := s.repo.GetPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Is(p.UserID) {
		return nil, apperr.Authorizationf("not allowed to access this payment")
	}
	return p, nil
}

func (s *service) confirmOrder(ctx context.Context, o *order.Order) {
	if err := o.UpdateStatus(order.StatusConfirmed); err != nil {
		log.Printf("payment: could not confirm order %s: %v", o.OrderNumber, err)
		return
	}
	if err := s.orders.Update(ctx, o); err != nil {
		log.Printf("payment: failed to persist confirmation of order %s: %v", o.OrderNumber, err)
	}
}

// publish emits an event for the payment's current status. Publishing is
// best effort and never rolls back the state change.
func (s *service) publish(ctx context.Context, p *Payment) {
	err := s.publisher.PublishPaymentEvent(ctx, events.PaymentEvent{
		PaymentID:  p.ID.String(),
		OrderID:    p.OrderID.String(),
		UserID:     p.UserID.String(),
		Method:     string(p.Method),
		Status:     string(p.Status),
		Amount:     p.Amount,
		OccurredAt: p.UpdatedAt,
	})
	if err != nil {
		log.Printf("payment: failed to publish %s event for %s: %v", p.Status, p.ID, err)
	}
}

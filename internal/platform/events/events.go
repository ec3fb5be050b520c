// Package events publishes order and payment lifecycle events so downstream
// consumers (notifications, analytics) can react without polling.
// Publishing is best-effort: services log failures and never roll back the
// state change that triggered the event.
package events

import (
	"context"
	"time"
)

// OrderEvent describes an order lifecycle change.
type OrderEvent struct {
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CustomerID  string    `json:"customer_id"`
	StoreID     string    `json:"store_id"`
	Status      string    `json:"status"`
	Total       float64   `json:"total"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PaymentEvent describes a payment lifecycle change.
type PaymentEvent struct {
	PaymentID  string    `json:"payment_id"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	Amount     float64   `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is implemented by the RabbitMQ publisher and by NopPublisher.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, ev OrderEvent) error
	PublishPaymentEvent(ctx context.Context, ev PaymentEvent) error
}

// NopPublisher discards all events. Used when no broker is configured and
// in tests.
type NopPublisher struct{}

func (NopPublisher) PublishOrderEvent(context.Context, OrderEvent) error     { return nil }
func (NopPublisher) PublishPaymentEvent(context.Context, PaymentEvent) error { return nil }

package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/validate"
)

// Status represents the lifecycle state of an order.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusConfirmed      Status = "CONFIRMED"
	StatusPreparing      Status = "PREPARING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// validTransitions defines the allowed status state machine. DELIVERED and
// CANCELLED are terminal.
var validTransitions = map[Status][]Status{
	StatusPending:        {StatusConfirmed, StatusCancelled},
	StatusConfirmed:      {StatusPreparing, StatusCancelled},
	StatusPreparing:      {StatusReadyForPickup, StatusCancelled},
	StatusReadyForPickup: {StatusOutForDelivery, StatusCancelled},
	StatusOutForDelivery: {StatusDelivered, StatusCancelled},
	StatusDelivered:      {},
	StatusCancelled:      {},
}

// Terminal reports whether no further transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows moving to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderItem is a single line item. ProductName and PriceAtPurchase are
// point-in-time snapshots: later catalog edits never change what the
// customer agreed to pay.
type OrderItem struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	Quantity        int       `json:"quantity"`
	PriceAtPurchase float64   `json:"price_at_purchase"`
}

// NewOrderItem validates and builds a line item.
func NewOrderItem(productID uuid.UUID, productName string, quantity int, priceAtPurchase float64) (*OrderItem, error) {
	if !validate.NotEmpty(productName) {
		return nil, apperr.Validationf("product name cannot be empty")
	}
	if !validate.Quantity(quantity) {
		return nil, apperr.Validationf("quantity must be at least 1")
	}
	if !validate.Price(priceAtPurchase) {
		return nil, apperr.Validationf("price must be greater than 0")
	}
	return &OrderItem{
		ID:              uuid.New(),
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        quantity,
		PriceAtPurchase: priceAtPurchase,
	}, nil
}

// Subtotal is price at purchase times quantity.
func (i *OrderItem) Subtotal() float64 {
	return i.PriceAtPurchase * float64(i.Quantity)
}

// Order is a customer's order at a store. Total is derived from the items
// and recomputed on every item change.
type Order struct {
	ID              uuid.UUID      `json:"id"`
	OrderNumber     string         `json:"order_number"`
	CustomerID      uuid.UUID      `json:"customer_id"`
	StoreID         uuid.UUID      `json:"store_id"`
	DriverID        *uuid.UUID     `json:"driver_id,omitempty"`
	DeliveryAddress common.Address `json:"delivery_address"`
	Items           []*OrderItem   `json:"items"`
	Total           float64        `json:"total"`
	Status          Status         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// New creates an empty PENDING order. The delivery address must be complete.
func New(customerID, storeID uuid.UUID, address common.Address) (*Order, error) {
	if customerID == uuid.Nil {
		return nil, apperr.Validationf("customer id cannot be empty")
	}
	if storeID == uuid.Nil {
		return nil, apperr.Validationf("store id cannot be empty")
	}
	if !address.Complete() {
		return nil, apperr.Validationf("delivery address is incomplete")
	}
	now := time.Now()
	return &Order{
		ID:              uuid.New(),
		OrderNumber:     generateOrderNumber(),
		CustomerID:      customerID,
		StoreID:         storeID,
		DeliveryAddress: address,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// AddItem appends an item while the order is still PENDING. A product may
// appear at most once.
func (o *Order) AddItem(item *OrderItem) error {
	if item == nil {
		return apperr.Validationf("cannot add nil item to order")
	}
	if o.Status != StatusPending {
		return apperr.Statef("cannot modify order items after order status is %s", o.Status)
	}
	for _, existing := range o.Items {
		if existing.ProductID == item.ProductID {
			return apperr.Validationf("product %s already exists in order", item.ProductID)
		}
	}
	o.Items = append(o.Items, item)
	o.RecalculateTotal()
	o.touch()
	return nil
}

// RemoveItem removes a line item while PENDING. Removing the last item is
// rejected: cancel the order instead.
func (o *Order) RemoveItem(itemID uuid.UUID) error {
	if o.Status != StatusPending {
		return apperr.Statef("cannot modify order items after order status is %s", o.Status)
	}
	idx := -1
	for i, item := range o.Items {
		if item.ID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return apperr.NotFoundf("order item %s not found", itemID)
	}
	if len(o.Items) == 1 {
		return apperr.Statef("cannot remove last item; cancel the order instead")
	}
	o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
	o.RecalculateTotal()
	o.touch()
	return nil
}

// RecalculateTotal rederives the total from the item subtotals.
func (o *Order) RecalculateTotal() {
	var sum float64
	for _, item := range o.Items {
		sum += item.Subtotal()
	}
	o.Total = sum
}

// Empty reports whether the order has no items. An empty order must never
// reach a committed state.
func (o *Order) Empty() bool { return len(o.Items) == 0 }

// ItemCount is the total ordered quantity across all items.
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// UpdateStatus moves the order through the state machine, rejecting any
// transition outside the table.
func (o *Order) UpdateStatus(next Status) error {
	if !o.Status.CanTransitionTo(next) {
		return apperr.Statef("invalid status transition from %s to %s", o.Status, next)
	}
	o.Status = next
	o.touch()
	return nil
}

// AssignDriver attaches a driver to a CONFIRMED or READY_FOR_PICKUP order
// and forces it OUT_FOR_DELIVERY. Reassigning the same driver is a no-op;
// a different driver is rejected.
func (o *Order) AssignDriver(driverID uuid.UUID) error {
	if driverID == uuid.Nil {
		return apperr.Validationf("driver id cannot be empty")
	}
	if o.DriverID != nil && *o.DriverID == driverID {
		return nil
	}
	if o.Status != StatusConfirmed && o.Status != StatusReadyForPickup {
		return apperr.Statef("can only assign driver to CONFIRMED or READY_FOR_PICKUP orders (current: %s)", o.Status)
	}
	if o.DriverID != nil {
		return apperr.Statef("order already assigned to driver %s", o.DriverID)
	}
	o.DriverID = &driverID
	o.Status = StatusOutForDelivery
	o.touch()
	return nil
}

// MarkDelivered completes an OUT_FOR_DELIVERY order with an assigned driver.
func (o *Order) MarkDelivered() error {
	if o.Status != StatusOutForDelivery {
		return apperr.Statef("can only mark orders delivered from OUT_FOR_DELIVERY (current: %s)", o.Status)
	}
	if o.DriverID == nil {
		return apperr.Statef("cannot mark as delivered without an assigned driver")
	}
	o.Status = StatusDelivered
	o.touch()
	return nil
}

// Cancel moves any non-terminal order to CANCELLED.
func (o *Order) Cancel() error {
	if o.Status == StatusDelivered {
		return apperr.Statef("cannot cancel delivered orders")
	}
	if o.Status == StatusCancelled {
		return apperr.Statef("order is already cancelled")
	}
	o.Status = StatusCancelled
	o.touch()
	return nil
}

func (o *Order) touch() { o.UpdatedAt = time.Now() }

package order

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/catalog"
	"github.com/martminds/martminds-backend/internal/modules/user"
	"github.com/martminds/martminds-backend/internal/platform/events"
)

// Users is the slice of the user module the order flow needs, satisfied by
// user.Service.
type Users interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

type service struct {
	repo      Repository
	catalog   Catalog
	users     Users
	publisher events.Publisher
	cfg       Config
}

// NewService wires the order service. A nil publisher disables events.
func NewService(repo Repository, cat Catalog, users Users, publisher events.Publisher, cfg Config) Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &service{repo: repo, catalog: cat, users: users, publisher: publisher, cfg: cfg}
}

func (s *service) PlaceOrder(ctx context.Context, actor common.Actor, req PlaceOrderRequest) (*Order, error) {
	if actor.UserID == uuid.Nil {
		return nil, apperr.Authorizationf("authentication required")
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validationf("order must contain at least one item")
	}

	o, err := New(actor.UserID, req.StoreID, req.DeliveryAddress)
	if err != nil {
		return nil, err
	}

	// Price every line against the live catalog before touching stock.
	// Prices are snapshotted onto the items so later catalog edits do not
	// change what this customer pays.
	reservations := make([]catalog.Reservation, 0, len(req.Items))
	for _, line := range req.Items {
		p, err := s.catalog.FindProduct(ctx, line.ProductID.String())
		if err != nil {
			return nil, err
		}
		if p.StoreID != req.StoreID {
			return nil, apperr.Validationf("product %s does not belong to store %s", p.ID, req.StoreID)
		}
		item, err := NewOrderItem(p.ID, p.Name, line.Quantity, p.Price)
		if err != nil {
			return nil, err
		}
		if err := o.AddItem(item); err != nil {
			return nil, err
		}
		reservations = append(reservations, catalog.Reservation{ProductID: p.ID, Quantity: line.Quantity})
	}

	// Reserve is all or nothing; a single short line fails the whole order
	// with stock untouched.
	if err := s.catalog.Reserve(ctx, reservations); err != nil {
		return nil, err
	}
	for attempt := 0; ; attempt++ {
		err := s.repo.CreateOrder(ctx, o)
		if err == nil {
			break
		}
		if errors.Is(err, errDuplicateNumber) && attempt < 3 {
			o.OrderNumber = generateOrderNumber()
			continue
		}
		if relErr := s.catalog.Release(ctx, reservations); relErr != nil {
			log.Printf("order: failed to release stock after create failure: %v", relErr)
		}
		return nil, err
	}

	s.publishStatus(ctx, o)
	return o, nil
}

func (s *service) GetOrder(ctx context.Context, actor common.Actor, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := canView(actor, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) GetOrderByNumber(ctx context.Context, actor common.Actor, number string) (*Order, error) {
	o, err := s.repo.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := canView(actor, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) ListByCustomer(ctx context.Context, actor common.Actor, customerID uuid.UUID) ([]*Order, error) {
	if !actor.IsAdmin() && !actor.Is(customerID) {
		return nil, apperr.Authorizationf("not allowed to view these orders")
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *service) ListByStore(ctx context.Context, actor common.Actor, storeID uuid.UUID) ([]*Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorizationf("not allowed to view store orders")
	}
	return s.repo.ListByStore(ctx, storeID)
}

func (s *service) ListByDriver(ctx context.Context, actor common.Actor, driverID uuid.UUID) ([]*Order, error) {
	if !actor.IsAdmin() && !actor.Is(driverID) {
		return nil, apperr.Authorizationf("not allowed to view these deliveries")
	}
	return s.repo.ListByDriver(ctx, driverID)
}

func (s *service) AddItem(ctx context.Context, actor common.Actor, orderID uuid.UUID, line ItemRequest) (*Order, error) {
	o, err := s.ownedOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	p, err := s.catalog.FindProduct(ctx, line.ProductID.String())
	if err != nil {
		return nil, err
	}
	if p.StoreID != o.StoreID {
		return nil, apperr.Validationf("product %s does not belong to store %s", p.ID, o.StoreID)
	}
	item, err := NewOrderItem(p.ID, p.Name, line.Quantity, p.Price)
	if err != nil {
		return nil, err
	}

	res := []catalog.Reservation{{ProductID: p.ID, Quantity: line.Quantity}}
	if err := s.catalog.Reserve(ctx, res); err != nil {
		return nil, err
	}
	if err := o.AddItem(item); err != nil {
		s.releaseQuiet(ctx, res)
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		s.releaseQuiet(ctx, res)
		return nil, err
	}
	return o, nil
}

func (s *service) RemoveItem(ctx context.Context, actor common.Actor, orderID, itemID uuid.UUID) (*Order, error) {
	o, err := s.ownedOrder(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	var removed *OrderItem
	for _, item := range o.Items {
		if item.ID == itemID {
			removed = item
			break
		}
	}
	if err := o.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if removed != nil {
		s.releaseQuiet(ctx, []catalog.Reservation{{ProductID: removed.ProductID, Quantity: removed.Quantity}})
	}
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor common.Actor, orderID uuid.UUID, next Status) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorizationf("only admins can update order status directly")
	}
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.UpdateStatus(next); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.publishStatus(ctx, o)
	return o, nil
}

func (s *service) AssignDriver(ctx context.Context, actor common.Actor, orderID, driverID uuid.UUID) (*Order, error) {
	if !actor.IsAdmin() && !(actor.IsDriver() && actor.Is(driverID)) {
		return nil, apperr.Authorizationf("only admins or the driver themselves can take a delivery")
	}
	driver, err := s.users.GetUser(ctx, driverID.String())
	if err != nil {
		return nil, err
	}
	if !driver.IsDriver() {
		return nil, apperr.Validationf("user %s is not a driver", driverID)
	}

	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := o.AssignDriver(driverID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.publishStatus(ctx, o)
	return o, nil
}

func (s *service) MarkDelivered(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(o.DriverID != nil && actor.Is(*o.DriverID)) {
		return nil, apperr.Authorizationf("only the assigned driver or an admin can mark delivery")
	}
	if err := o.MarkDelivered(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	s.publishStatus(ctx, o)
	return o, nil
}

func (s *service) CancelOrder(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Is(o.CustomerID) {
		return nil, apperr.Authorizationf("not allowed to cancel this order")
	}
	if err := o.Cancel(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	if s.cfg.RestockOnCancel {
		reservations := make([]catalog.Reservation, 0, len(o.Items))
		for _, item := range o.Items {
			reservations = append(reservations, catalog.Reservation{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		s.releaseQuiet(ctx, reservations)
	}
	s.publishStatus(ctx, o)
	return o, nil
}

// ownedOrder loads an order and checks the actor may edit its items.
func (s *service) ownedOrder(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.Is(o.CustomerID) {
		return nil, apperr.Authorizationf("not allowed to modify this order")
	}
	return o, nil
}

func canView(actor common.Actor, o *Order) error {
	if actor.IsAdmin() || actor.Is(o.CustomerID) {
		return nil
	}
	if o.DriverID != nil && actor.Is(*o.DriverID) {
		return nil
	}
	return apperr.Authorizationf("not allowed to view this order")
}

func (s *service) releaseQuiet(ctx context.Context, reservations []catalog.Reservation) {
	if err := s.catalog.Release(ctx, reservations); err != nil {
		log.Printf("order: failed to release stock: %v", err)
	}
}

// publishStatus emits an event for the order's current status. Publishing
// is best effort and never rolls back the state change.
func (s *service) publishStatus(ctx context.Context, o *Order) {
	err := s.publisher.PublishOrderEvent(ctx, events.OrderEvent{
		OrderID:     o.ID.String(),
		OrderNumber: o.OrderNumber,
		CustomerID:  o.CustomerID.String(),
		StoreID:     o.StoreID.String(),
		Status:      string(o.Status),
		Total:       o.Total,
		OccurredAt:  o.UpdatedAt,
	})
	if err != nil {
		log.Printf("order: failed to publish %s event for %s: %v", o.Status, o.OrderNumber, err)
	}
}

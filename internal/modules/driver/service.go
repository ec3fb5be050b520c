package driver

import (
	"context"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/order"
	"github.com/martminds/martminds-backend/internal/modules/user"
)

// Orders is the slice of the order module the dispatch flow needs,
// satisfied by order.Service.
type Orders interface {
	AssignDriver(ctx context.Context, actor common.Actor, orderID, driverID uuid.UUID) (*order.Order, error)
	MarkDelivered(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*order.Order, error)
	ListByDriver(ctx context.Context, actor common.Actor, driverID uuid.UUID) ([]*order.Order, error)
}

// Service manages the driver fleet: listing, dispatch and workload stats.
type Service interface {
	ListDrivers(ctx context.Context, actor common.Actor) ([]*user.User, error)
	ListAvailable(ctx context.Context, actor common.Actor) ([]*user.User, error)

	// AssignFirstAvailable dispatches the first free driver to the order
	// and marks them busy.
	AssignFirstAvailable(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*order.Order, error)

	// CompleteDelivery marks the order delivered and frees its driver.
	CompleteDelivery(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*order.Order, error)

	DriverStats(ctx context.Context, actor common.Actor, driverID uuid.UUID) (*Stats, error)
}

type service struct {
	users  user.Repository
	orders Orders
}

func NewService(users user.Repository, orders Orders) Service {
	return &service{users: users, orders: orders}
}

func (s *service) ListDrivers(ctx context.Context, actor common.Actor) ([]*user.User, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Authorizationf("only admins can list drivers")
	}
	return s.users.ListByRole(ctx, user.RoleDriver)
}

func (s *service) ListAvailable(ctx context.Context, actor common.Actor) ([]*user.User, error) {
	drivers, err := s.ListDrivers(ctx, actor)
	if err != nil {
		return nil, err
	}
	available := drivers[:0]
	for _, d := range drivers {
		if d.IsAvailable {
			available = append(available, d)
		}
	}
	return available, nil
}

func (s *service) AssignFirstAvailable(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*order.Order, error) {
	available, err := s.ListAvailable(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, apperr.Resourcef("no drivers available")
	}
	chosen := available[0]
	o, err := s.orders.AssignDriver(ctx, actor, orderID, chosen.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetAvailability(ctx, chosen.ID.String(), false); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) CompleteDelivery(ctx context.Context, actor common.Actor, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.MarkDelivered(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	if o.DriverID != nil {
		if err := s.users.SetAvailability(ctx, o.DriverID.String(), true); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (s *service) DriverStats(ctx context.Context, actor common.Actor, driverID uuid.UUID) (*Stats, error) {
	d, err := s.users.GetUserByID(ctx, driverID.String())
	if err != nil {
		return nil, err
	}
	if !d.IsDriver() {
		return nil, apperr.Validationf("user %s is not a driver", driverID)
	}
	deliveries, err := s.orders.ListByDriver(ctx, actor, driverID)
	if err != nil {
		return nil, err
	}
	stats := &Stats{
		DriverID:    d.ID,
		Name:        d.Name,
		Phone:       d.Phone,
		IsAvailable: d.IsAvailable,
	}
	for _, o := range deliveries {
		switch o.Status {
		case order.StatusOutForDelivery:
			stats.ActiveDeliveries++
		case order.StatusDelivered:
			stats.CompletedDeliveries++
		}
	}
	return stats, nil
}

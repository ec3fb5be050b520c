package order

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/catalog"
	"github.com/martminds/martminds-backend/internal/modules/user"
)

type fixture struct {
	svc     Service
	catalog catalog.Service
	users   user.Service
	storeID uuid.UUID
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	catalogSvc := catalog.NewService(catalog.NewMemoryRepository(), nil)
	userSvc := user.NewService(user.NewMemoryRepository())
	svc := NewService(NewMemoryRepository(), catalogSvc, userSvc, nil, cfg)
	return &fixture{svc: svc, catalog: catalogSvc, users: userSvc, storeID: uuid.New()}
}

func (f *fixture) addProduct(t *testing.T, name string, price float64, stock int) *catalog.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalog.CreateProductRequest{
		StoreID:  f.storeID.String(),
		Name:     name,
		Category: "groceries",
		Price:    price,
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) registerDriver(t *testing.T) *user.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), user.RegisterRequest{
		Name:     "Dedi Kurniawan",
		Email:    uuid.NewString() + "@martminds.dev",
		Password: "rahasia-banget",
		Phone:    "081234567890",
		Role:     string(user.RoleDriver),
	})
	require.NoError(t, err)
	return u
}

func customer() common.Actor {
	return common.Actor{UserID: uuid.New(), Role: string(user.RoleCustomer)}
}

func admin() common.Actor {
	return common.Actor{UserID: uuid.New(), Role: string(user.RoleAdmin)}
}

func (f *fixture) place(t *testing.T, actor common.Actor, items ...ItemRequest) *Order {
	t.Helper()
	o, err := f.svc.PlaceOrder(context.Background(), actor, PlaceOrderRequest{
		StoreID:         f.storeID,
		DeliveryAddress: testAddress(),
		Items:           items,
	})
	require.NoError(t, err)
	return o
}

func TestPlaceOrderDecrementsStockAndSnapshotsPrice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	p := f.addProduct(t, "Beras Premium 5kg", 3500, 100)

	o := f.place(t, customer(), ItemRequest{ProductID: p.ID, Quantity: 2})

	assert.Equal(t, 7000.0, o.Total)
	assert.Equal(t, StatusPending, o.Status)
	assert.Regexp(t, `^ORD-\d{8}-\d{6}$`, o.OrderNumber)

	got, err := f.catalog.GetProduct(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 98, got.Stock)

	// A later price change must not affect the placed order.
	_, err = f.catalog.UpdateProduct(ctx, p.ID.String(), catalog.UpdateProductRequest{
		Name:     p.Name,
		Category: p.Category,
		Price:    9999,
	})
	require.NoError(t, err)
	assert.Equal(t, 3500.0, o.Items[0].PriceAtPurchase)
}

func TestPlaceOrderInsufficientStockLeavesStockUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	ok := f.addProduct(t, "Gula Pasir 1kg", 15000, 50)
	scarce := f.addProduct(t, "Minyak Goreng 2L", 38000, 3)

	_, err := f.svc.PlaceOrder(ctx, customer(), PlaceOrderRequest{
		StoreID:         f.storeID,
		DeliveryAddress: testAddress(),
		Items: []ItemRequest{
			{ProductID: ok.ID, Quantity: 10},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindResource, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "requested 5")
	assert.Contains(t, err.Error(), "available 3")

	// The passing line must not have been decremented either.
	got, err := f.catalog.GetProduct(ctx, ok.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 50, got.Stock)
}

func TestPlaceOrderRejectsEmptyAndWrongStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	_, err := f.svc.PlaceOrder(ctx, customer(), PlaceOrderRequest{
		StoreID:         f.storeID,
		DeliveryAddress: testAddress(),
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	other := &fixture{catalog: f.catalog, storeID: uuid.New()}
	foreign := other.addProduct(t, "Kecap Manis", 12000, 10)
	_, err = f.svc.PlaceOrder(ctx, customer(), PlaceOrderRequest{
		StoreID:         f.storeID,
		DeliveryAddress: testAddress(),
		Items:           []ItemRequest{{ProductID: foreign.ID, Quantity: 1}},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAddAndRemoveItemAdjustStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	a := f.addProduct(t, "Telur 1kg", 28000, 20)
	b := f.addProduct(t, "Roti Tawar", 14000, 10)

	cust := customer()
	o := f.place(t, cust, ItemRequest{ProductID: a.ID, Quantity: 2})

	o, err := f.svc.AddItem(ctx, cust, o.ID, ItemRequest{ProductID: b.ID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 2*28000.0+3*14000.0, o.Total)

	got, err := f.catalog.GetProduct(ctx, b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	var itemB *OrderItem
	for _, item := range o.Items {
		if item.ProductID == b.ID {
			itemB = item
		}
	}
	require.NotNil(t, itemB)

	o, err = f.svc.RemoveItem(ctx, cust, o.ID, itemB.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*28000.0, o.Total)

	got, err = f.catalog.GetProduct(ctx, b.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock, "removed quantity returns to stock")
}

func TestOrderAuthorization(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	p := f.addProduct(t, "Kopi Bubuk", 22000, 10)

	owner := customer()
	o := f.place(t, owner, ItemRequest{ProductID: p.ID, Quantity: 1})

	_, err := f.svc.GetOrder(ctx, customer(), o.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	_, err = f.svc.GetOrder(ctx, owner, o.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, admin(), o.ID)
	assert.NoError(t, err)

	_, err = f.svc.CancelOrder(ctx, customer(), o.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, owner, o.ID, StatusConfirmed)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestDeliveryFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	p := f.addProduct(t, "Susu UHT 1L", 18000, 10)
	driver := f.registerDriver(t)

	cust := customer()
	adm := admin()
	o := f.place(t, cust, ItemRequest{ProductID: p.ID, Quantity: 1})

	o, err := f.svc.UpdateStatus(ctx, adm, o.ID, StatusConfirmed)
	require.NoError(t, err)

	// A plain customer cannot take the delivery.
	_, err = f.svc.AssignDriver(ctx, cust, o.ID, driver.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	// The driver takes their own delivery.
	driverActor := common.Actor{UserID: driver.ID, Role: string(user.RoleDriver)}
	o, err = f.svc.AssignDriver(ctx, driverActor, o.ID, driver.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, o.Status)

	// Only the assigned driver or an admin can complete it.
	_, err = f.svc.MarkDelivered(ctx, cust, o.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	o, err = f.svc.MarkDelivered(ctx, driverActor, o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, o.Status)

	deliveries, err := f.svc.ListByDriver(ctx, driverActor, driver.ID)
	require.NoError(t, err)
	assert.Len(t, deliveries, 1)
}

func TestAssignDriverRejectsNonDriver(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	p := f.addProduct(t, "Sabun Mandi", 5000, 10)

	shopper, err := f.users.Register(ctx, user.RegisterRequest{
		Name:     "Rina Wulandari",
		Email:    uuid.NewString() + "@martminds.dev",
		Password: "rahasia-banget",
		Phone:    "081298765432",
	})
	require.NoError(t, err)

	o := f.place(t, customer(), ItemRequest{ProductID: p.ID, Quantity: 1})
	_, err = f.svc.UpdateStatus(ctx, admin(), o.ID, StatusConfirmed)
	require.NoError(t, err)

	_, err = f.svc.AssignDriver(ctx, admin(), o.ID, shopper.ID)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCancelRestockPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("restock enabled", func(t *testing.T) {
		f := newFixture(t, Config{RestockOnCancel: true})
		p := f.addProduct(t, "Teh Celup", 9000, 10)
		cust := customer()
		o := f.place(t, cust, ItemRequest{ProductID: p.ID, Quantity: 4})

		_, err := f.svc.CancelOrder(ctx, cust, o.ID)
		require.NoError(t, err)

		got, err := f.catalog.GetProduct(ctx, p.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 10, got.Stock)
	})

	t.Run("restock disabled", func(t *testing.T) {
		f := newFixture(t, Config{RestockOnCancel: false})
		p := f.addProduct(t, "Teh Celup", 9000, 10)
		cust := customer()
		o := f.place(t, cust, ItemRequest{ProductID: p.ID, Quantity: 4})

		_, err := f.svc.CancelOrder(ctx, cust, o.ID)
		require.NoError(t, err)

		got, err := f.catalog.GetProduct(ctx, p.ID.String())
		require.NoError(t, err)
		assert.Equal(t, 6, got.Stock)
	})
}

func TestGetOrderByNumber(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	p := f.addProduct(t, "Air Mineral 600ml", 4000, 24)
	cust := customer()
	o := f.place(t, cust, ItemRequest{ProductID: p.ID, Quantity: 6})

	got, err := f.svc.GetOrderByNumber(ctx, cust, o.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, o.ID, got.ID)

	_, err = f.svc.GetOrderByNumber(ctx, cust, "ORD-19700101-0000")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

// collidingRepo reports a duplicate order number a set number of times
// before delegating to the real repository.
type collidingRepo struct {
	Repository
	collisions int
}

func (r *collidingRepo) CreateOrder(ctx context.Context, o *Order) error {
	if r.collisions > 0 {
		r.collisions--
		return fmt.Errorf("order number %s: %w", o.OrderNumber, errDuplicateNumber)
	}
	return r.Repository.CreateOrder(ctx, o)
}

func TestPlaceOrderRetriesOnDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	catalogSvc := catalog.NewService(catalog.NewMemoryRepository(), nil)
	userSvc := user.NewService(user.NewMemoryRepository())
	repo := &collidingRepo{Repository: NewMemoryRepository(), collisions: 2}
	f := &fixture{
		svc:     NewService(repo, catalogSvc, userSvc, nil, Config{}),
		catalog: catalogSvc,
		users:   userSvc,
		storeID: uuid.New(),
	}
	p := f.addProduct(t, "Beras Premium 5kg", 3500, 10)

	o := f.place(t, customer(), ItemRequest{ProductID: p.ID, Quantity: 2})
	assert.Regexp(t, `^ORD-\d{8}-\d{6}$`, o.OrderNumber)

	got, err := f.catalog.GetProduct(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock, "stock is reserved exactly once across retries")

	// A persistent collision gives up and releases the reservation.
	repo.collisions = 10
	_, err = f.svc.PlaceOrder(ctx, customer(), PlaceOrderRequest{
		StoreID:         f.storeID,
		DeliveryAddress: testAddress(),
		Items:           []ItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.Error(t, err)
	got, err = f.catalog.GetProduct(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 8, got.Stock)
}

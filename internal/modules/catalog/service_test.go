package catalog

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martminds/martminds-backend/internal/apperr"
)

func newTestService(t *testing.T) (Service, uuid.UUID) {
	t.Helper()
	return NewService(NewMemoryRepository(), nil), uuid.New()
}

func addProduct(t *testing.T, svc Service, storeID uuid.UUID, name string, price float64, stock int) *Product {
	t.Helper()
	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		StoreID:  storeID.String(),
		Name:     name,
		Category: "groceries",
		Price:    price,
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

func TestCreateProductValidation(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductRequest{StoreID: "nope", Name: "Beras", Price: 100, Stock: 1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateProduct(ctx, CreateProductRequest{StoreID: storeID.String(), Name: " ", Price: 100, Stock: 1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateProduct(ctx, CreateProductRequest{StoreID: storeID.String(), Name: "Beras", Price: 0, Stock: 1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateProduct(ctx, CreateProductRequest{StoreID: storeID.String(), Name: "Beras", Price: 100, Stock: -1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestReserveAllOrNothing(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	plenty := addProduct(t, svc, storeID, "Gula Pasir 1kg", 15000, 50)
	scarce := addProduct(t, svc, storeID, "Minyak Goreng 2L", 38000, 3)

	err := svc.Reserve(ctx, []Reservation{
		{ProductID: plenty.ID, Quantity: 10},
		{ProductID: scarce.ID, Quantity: 5},
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindResource, apperr.KindOf(err))

	got, err := svc.GetProduct(ctx, plenty.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 50, got.Stock, "no line may be decremented when any line fails")

	require.NoError(t, svc.Reserve(ctx, []Reservation{
		{ProductID: plenty.ID, Quantity: 10},
		{ProductID: scarce.ID, Quantity: 3},
	}))
	got, err = svc.GetProduct(ctx, plenty.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 40, got.Stock)
	got, err = svc.GetProduct(ctx, scarce.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestReserveNeverOversellsUnderContention(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	p := addProduct(t, svc, storeID, "Telur 1kg", 28000, 10)

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Reserve(ctx, []Reservation{{ProductID: p.ID, Quantity: 1}}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	got, err := svc.GetProduct(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestReleaseReturnsStock(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	p := addProduct(t, svc, storeID, "Roti Tawar", 14000, 10)

	require.NoError(t, svc.Reserve(ctx, []Reservation{{ProductID: p.ID, Quantity: 4}}))
	require.NoError(t, svc.Release(ctx, []Reservation{{ProductID: p.ID, Quantity: 4}}))

	got, err := svc.GetProduct(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, 10, got.Stock)
}

func TestAdjustStockRejectsNegativeResult(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	p := addProduct(t, svc, storeID, "Susu UHT 1L", 18000, 5)

	_, err := svc.AdjustStock(ctx, p.ID.String(), -6)
	require.Error(t, err)
	assert.Equal(t, apperr.KindResource, apperr.KindOf(err))

	got, err := svc.AdjustStock(ctx, p.ID.String(), -5)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}

func TestListProductsFilters(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	addProduct(t, svc, storeID, "Kopi Bubuk", 22000, 5)
	other := uuid.New()
	addProduct(t, svc, other, "Teh Celup", 9000, 5)

	all, err := svc.ListProducts(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListProducts(ctx, storeID.String(), "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "Kopi Bubuk", mine[0].Name)
}

func TestUpdateProductDoesNotTouchStock(t *testing.T) {
	svc, storeID := newTestService(t)
	ctx := context.Background()
	p := addProduct(t, svc, storeID, "Sabun Mandi", 5000, 7)

	got, err := svc.UpdateProduct(ctx, p.ID.String(), UpdateProductRequest{
		Name:     "Sabun Mandi Cair",
		Category: "toiletries",
		Price:    6500,
	})
	require.NoError(t, err)
	assert.Equal(t, "Sabun Mandi Cair", got.Name)
	assert.Equal(t, 6500.0, got.Price)
	assert.Equal(t, 7, got.Stock)
}

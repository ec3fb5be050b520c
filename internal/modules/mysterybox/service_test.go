package mysterybox

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
	"github.com/martminds/martminds-backend/internal/modules/catalog"
)

type fixture struct {
	svc     Service
	catalog catalog.Service
	storeID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	catalogSvc := catalog.NewService(catalog.NewMemoryRepository(), nil)
	return &fixture{
		svc:     NewService(NewMemoryRepository(), catalogSvc),
		catalog: catalogSvc,
		storeID: uuid.New(),
	}
}

func (f *fixture) addProduct(t *testing.T, name string) *catalog.Product {
	t.Helper()
	p, err := f.catalog.CreateProduct(context.Background(), catalog.CreateProductRequest{
		StoreID:  f.storeID.String(),
		Name:     name,
		Category: "groceries",
		Price:    15000,
		Stock:    10,
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) createBox(t *testing.T, stock int, candidates ...uuid.UUID) *Box {
	t.Helper()
	b, err := f.svc.CreateBox(context.Background(), adminActor(), CreateBoxRequest{
		StoreID:    f.storeID.String(),
		Name:       "Paket Hemat Misterius",
		Category:   "bundles",
		Price:      25000,
		Stock:      stock,
		Candidates: candidates,
	})
	require.NoError(t, err)
	return b
}

func adminActor() common.Actor {
	return common.Actor{UserID: uuid.New(), Role: "ADMIN"}
}

func customerActor() common.Actor {
	return common.Actor{UserID: uuid.New(), Role: "CUSTOMER"}
}

func TestCreateBoxValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.addProduct(t, "Gula Pasir 1kg")

	_, err := f.svc.CreateBox(ctx, customerActor(), CreateBoxRequest{
		StoreID: f.storeID.String(), Name: "Paket", Category: "bundles", Price: 25000, Stock: 1,
		Candidates: []uuid.UUID{p.ID},
	})
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	_, err = f.svc.CreateBox(ctx, adminActor(), CreateBoxRequest{
		StoreID: f.storeID.String(), Name: "Paket", Category: "bundles", Price: 0, Stock: 1,
		Candidates: []uuid.UUID{p.ID},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.svc.CreateBox(ctx, adminActor(), CreateBoxRequest{
		StoreID: f.storeID.String(), Name: "Paket", Category: "bundles", Price: 25000, Stock: 1,
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreateBoxRejectsForeignCandidates(t *testing.T) {
	f := newFixture(t)
	other := &fixture{catalog: f.catalog, storeID: uuid.New()}
	foreign := other.addProduct(t, "Kecap Manis")

	_, err := f.svc.CreateBox(context.Background(), adminActor(), CreateBoxRequest{
		StoreID: f.storeID.String(), Name: "Paket", Category: "bundles", Price: 25000, Stock: 1,
		Candidates: []uuid.UUID{foreign.ID},
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPurchaseRevealsCandidateAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addProduct(t, "Gula Pasir 1kg")
	b := f.addProduct(t, "Kopi Bubuk")
	c := f.addProduct(t, "Teh Celup")
	box := f.createBox(t, 2, a.ID, b.ID, c.ID)

	cust := customerActor()
	p, err := f.svc.Purchase(ctx, cust, box.ID)
	require.NoError(t, err)
	assert.Equal(t, box.ID, p.BoxID)
	assert.Equal(t, cust.UserID, p.CustomerID)
	assert.Equal(t, 25000.0, p.PricePaid)
	assert.Contains(t, []uuid.UUID{a.ID, b.ID, c.ID}, p.ProductID)

	got, err := f.svc.GetBox(ctx, box.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}

func TestPurchaseOutOfStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addProduct(t, "Gula Pasir 1kg")
	box := f.createBox(t, 1, a.ID)

	_, err := f.svc.Purchase(ctx, customerActor(), box.ID)
	require.NoError(t, err)

	_, err = f.svc.Purchase(ctx, customerActor(), box.ID)
	assert.Equal(t, apperr.KindResource, apperr.KindOf(err))
}

func TestPurchaseRequiresAuthentication(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "Gula Pasir 1kg")
	box := f.createBox(t, 1, a.ID)

	_, err := f.svc.Purchase(context.Background(), common.Actor{}, box.ID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

func TestListPurchases(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addProduct(t, "Gula Pasir 1kg")
	box := f.createBox(t, 5, a.ID)

	cust := customerActor()
	for i := 0; i < 3; i++ {
		_, err := f.svc.Purchase(ctx, cust, box.ID)
		require.NoError(t, err)
	}

	purchases, err := f.svc.ListPurchases(ctx, cust, cust.UserID)
	require.NoError(t, err)
	assert.Len(t, purchases, 3)

	_, err = f.svc.ListPurchases(ctx, customerActor(), cust.UserID)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

func TestCreateStoreValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.CreateStore(ctx, CreateStoreRequest{Name: " "})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.CreateStore(ctx, CreateStoreRequest{Name: "Toko Sejahtera", Phone: "123"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestStoreLifecycle(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	st, err := svc.CreateStore(ctx, CreateStoreRequest{
		Name: "Toko Sejahtera",
		Address: common.Address{
			Street:     "Jl. Melawai No. 5",
			City:       "Jakarta",
			PostalCode: "12160",
			District:   "Kebayoran Baru",
			Province:   "DKI Jakarta",
		},
		Phone: "0215551234",
	})
	require.NoError(t, err)
	assert.True(t, st.IsActive, "a new store opens active")

	got, err := svc.GetStore(ctx, st.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Toko Sejahtera", got.Name)

	require.NoError(t, svc.SetActive(ctx, st.ID.String(), false))

	active, err := svc.ListStores(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.ListStores(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateStorePartial(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	st, err := svc.CreateStore(ctx, CreateStoreRequest{
		Name:  "Toko Sejahtera",
		Phone: "0215551234",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStore(ctx, st.ID.String(), UpdateStoreRequest{
		Name: "Toko Sejahtera Baru",
	})
	require.NoError(t, err)
	assert.Equal(t, "Toko Sejahtera Baru", updated.Name)
	assert.Equal(t, "0215551234", updated.Phone, "empty fields keep their value")

	_, err = svc.UpdateStore(ctx, st.ID.String(), UpdateStoreRequest{Phone: "123"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.UpdateStore(ctx, "00000000-0000-0000-0000-000000000000", UpdateStoreRequest{Name: "X"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

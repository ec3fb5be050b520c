package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martminds/martminds-backend/internal/apperr"
)

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "************9012", MaskCardNumber("4532123456789012"))
	assert.Equal(t, "************9012", MaskCardNumber("4532-1234-5678-9012"))
	assert.Equal(t, "123", MaskCardNumber("123"))
}

func TestCashProcessorPrepare(t *testing.T) {
	proc := NewCashProcessor()
	p := &Payment{Amount: 50000}

	err := proc.Prepare(p, DetailsRequest{CitizenID: "123", AmountReceived: 60000})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = proc.Prepare(p, DetailsRequest{CitizenID: "3175012345678901", AmountReceived: 0})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	require.NoError(t, proc.Prepare(p, DetailsRequest{CitizenID: "3175012345678901", AmountReceived: 60000}))
	require.NotNil(t, p.Cash)
	assert.Equal(t, 60000.0, p.Cash.AmountReceived)
}

func TestCashProcessorSettleComputesChange(t *testing.T) {
	proc := NewCashProcessor()
	p := &Payment{Amount: 50000}
	require.NoError(t, proc.Prepare(p, DetailsRequest{CitizenID: "3175012345678901", AmountReceived: 60000}))

	require.NoError(t, proc.Settle(context.Background(), p))
	assert.Equal(t, 10000.0, p.Cash.Change)
}

func TestCashProcessorSettleRejectsShortPayment(t *testing.T) {
	proc := NewCashProcessor()
	p := &Payment{Amount: 50000}
	require.NoError(t, proc.Prepare(p, DetailsRequest{CitizenID: "3175012345678901", AmountReceived: 40000}))

	err := proc.Settle(context.Background(), p)
	assert.Equal(t, apperr.KindResource, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "received 40000.00")
	assert.Contains(t, err.Error(), "required 50000.00")
}

func TestCardProcessorPrepare(t *testing.T) {
	proc := NewCardProcessor()

	tests := []struct {
		name string
		req  DetailsRequest
		ok   bool
	}{
		{"valid", DetailsRequest{CardNumber: "4532123456789012", HolderName: "Budi Santoso", Expiry: "12/30", CVV: "123"}, true},
		{"luhn failure", DetailsRequest{CardNumber: "4532123456789013", HolderName: "Budi Santoso", Expiry: "12/30", CVV: "123"}, false},
		{"empty holder", DetailsRequest{CardNumber: "4532123456789012", HolderName: " ", Expiry: "12/30", CVV: "123"}, false},
		{"expired", DetailsRequest{CardNumber: "4532123456789012", HolderName: "Budi Santoso", Expiry: "01/20", CVV: "123"}, false},
		{"bad cvv", DetailsRequest{CardNumber: "4532123456789012", HolderName: "Budi Santoso", Expiry: "12/30", CVV: "12"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{Amount: 50000}
			err := proc.Prepare(p, tt.req)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, "************9012", p.Card.MaskedNumber)
				assert.Equal(t, "Budi Santoso", p.Card.HolderName)
			} else {
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			}
		})
	}
}

type fakeBalances struct {
	balance float64
}

func (f *fakeBalances) Withdraw(ctx context.Context, userID string, amount float64) error {
	if f.balance < amount {
		return apperr.Resourcef("insufficient balance: required %.2f, available %.2f", amount, f.balance)
	}
	f.balance -= amount
	return nil
}

func (f *fakeBalances) Credit(ctx context.Context, userID string, amount float64) error {
	f.balance += amount
	return nil
}

func TestEWalletProcessorInternalProvider(t *testing.T) {
	ctx := context.Background()
	balances := &fakeBalances{balance: 100000}
	proc := NewEWalletProcessor(balances)
	p := &Payment{UserID: uuid.New(), Amount: 60000}

	require.NoError(t, proc.Prepare(p, DetailsRequest{WalletID: "budi2024", Provider: ProviderStoredBalance}))
	require.NoError(t, proc.Settle(ctx, p))
	assert.Equal(t, 40000.0, balances.balance)

	require.NoError(t, proc.Refund(ctx, p))
	assert.Equal(t, 100000.0, balances.balance)
}

func TestEWalletProcessorInternalProviderInsufficientBalance(t *testing.T) {
	balances := &fakeBalances{balance: 10000}
	proc := NewEWalletProcessor(balances)
	p := &Payment{UserID: uuid.New(), Amount: 60000}
	require.NoError(t, proc.Prepare(p, DetailsRequest{WalletID: "budi2024", Provider: ProviderStoredBalance}))

	err := proc.Settle(context.Background(), p)
	assert.Equal(t, apperr.KindResource, apperr.KindOf(err))
	assert.Equal(t, 10000.0, balances.balance)
}

func TestEWalletProcessorExternalProviderSkipsBalance(t *testing.T) {
	ctx := context.Background()
	balances := &fakeBalances{balance: 5000}
	proc := NewEWalletProcessor(balances)
	p := &Payment{UserID: uuid.New(), Amount: 60000}

	require.NoError(t, proc.Prepare(p, DetailsRequest{WalletID: "budi2024", Provider: "GoPay"}))
	require.NoError(t, proc.Settle(ctx, p))
	require.NoError(t, proc.Refund(ctx, p))
	assert.Equal(t, 5000.0, balances.balance)
}

func TestEWalletProcessorRejectsBadWalletID(t *testing.T) {
	proc := NewEWalletProcessor(&fakeBalances{})
	p := &Payment{Amount: 60000}

	err := proc.Prepare(p, DetailsRequest{WalletID: "ab", Provider: "GoPay"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = proc.Prepare(p, DetailsRequest{WalletID: "budi 2024", Provider: "GoPay"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewCashProcessor(), NewCardProcessor())

	proc, err := r.Get(MethodCash)
	require.NoError(t, err)
	assert.Equal(t, MethodCash, proc.Method())

	_, err = r.Get(MethodEWallet)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

package payment

import (
	"context"
	"time"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/validate"
)

// BalanceStore moves stored-balance funds, satisfied by user.Service.
type BalanceStore interface {
	Withdraw(ctx context.Context, userID string, amount float64) error
	Credit(ctx context.Context, userID string, amount float64) error
}

// cashProcessor settles cash-on-delivery payments. The citizen id is
// checked at creation; the received amount is checked at settlement so a
// short payment leaves the payment PENDING and retryable.
type cashProcessor struct{}

func NewCashProcessor() Processor { return cashProcessor{} }

func (cashProcessor) Method() Method { return MethodCash }

func (cashProcessor) Prepare(p *Payment, req DetailsRequest) error {
	if !validate.CitizenID(req.CitizenID) {
		return apperr.Validationf("citizen id must be exactly 16 digits")
	}
	if req.AmountReceived <= 0 {
		return apperr.Validationf("amount received must be greater than 0")
	}
	p.Cash = &CashDetails{CitizenID: req.CitizenID, AmountReceived: req.AmountReceived}
	return nil
}

func (cashProcessor) Settle(ctx context.Context, p *Payment) error {
	if p.Cash == nil {
		return apperr.Internalf(nil, "cash payment has no cash details")
	}
	if p.Cash.AmountReceived < p.Amount {
		return apperr.Resourcef(
			"insufficient cash: received %.2f, required %.2f", p.Cash.AmountReceived, p.Amount)
	}
	p.Cash.Change = p.Cash.AmountReceived - p.Amount
	return nil
}

func (cashProcessor) Refund(ctx context.Context, p *Payment) error {
	// Cash refunds are handed back at the door; nothing to reverse here.
	return nil
}

// cardProcessor validates card details up front and simulates settlement
// against an external acquirer.
type cardProcessor struct {
	now func() time.Time
}

func NewCardProcessor() Processor { return &cardProcessor{now: time.Now} }

func (cardProcessor) Method() Method { return MethodCreditCard }

func (c *cardProcessor) Prepare(p *Payment, req DetailsRequest) error {
	if !validate.CreditCard(req.CardNumber) {
		return apperr.Validationf("invalid card number")
	}
	if !validate.NotEmpty(req.HolderName) {
		return apperr.Validationf("card holder name cannot be empty")
	}
	if !validate.CardExpiry(req.Expiry, c.now()) {
		return apperr.Validationf("card expiry must be MM/YY and not in the past")
	}
	if !validate.CVV(req.CVV) {
		return apperr.Validationf("cvv must be 3 or 4 digits")
	}
	p.Card = &CardDetails{
		MaskedNumber: MaskCardNumber(req.CardNumber),
		HolderName:   req.HolderName,
		Expiry:       req.Expiry,
	}
	return nil
}

func (c *cardProcessor) Settle(ctx context.Context, p *Payment) error {
	if p.Card == nil {
		return apperr.Internalf(nil, "card payment has no card details")
	}
	return nil
}

func (c *cardProcessor) Refund(ctx context.Context, p *Payment) error { return nil }

// ewalletProcessor settles wallet payments. The in-house provider debits
// the user's stored balance; external providers are settled out of band.
type ewalletProcessor struct {
	balances BalanceStore
}

func NewEWalletProcessor(balances BalanceStore) Processor {
	return &ewalletProcessor{balances: balances}
}

func (*ewalletProcessor) Method() Method { return MethodEWallet }

func (*ewalletProcessor) Prepare(p *Payment, req DetailsRequest) error {
	if !validate.WalletID(req.WalletID) {
		return apperr.Validationf("wallet id must be 6 to 20 letters or digits")
	}
	provider := req.Provider
	if !validate.NotEmpty(provider) {
		return apperr.Validationf("wallet provider cannot be empty")
	}
	p.EWallet = &EWalletDetails{WalletID: req.WalletID, Provider: provider}
	return nil
}

func (e *ewalletProcessor) Settle(ctx context.Context, p *Payment) error {
	if p.EWallet == nil {
		return apperr.Internalf(nil, "e-wallet payment has no wallet details")
	}
	if p.EWallet.Provider != ProviderStoredBalance {
		return nil
	}
	return e.balances.Withdraw(ctx, p.UserID.String(), p.Amount)
}

func (e *ewalletProcessor) Refund(ctx context.Context, p *Payment) error {
	if p.EWallet == nil || p.EWallet.Provider != ProviderStoredBalance {
		return nil
	}
	return e.balances.Credit(ctx, p.UserID.String(), p.Amount)
}

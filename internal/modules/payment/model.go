package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Method identifies how a payment is settled.
type Method string

const (
	MethodCash       Method = "CASH"
	MethodEWallet    Method = "EWALLET"
	MethodCreditCard Method = "CREDIT_CARD"
)

// Status represents the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusSuccess   Status = "SUCCESS"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
	StatusRefunded  Status = "REFUNDED"
)

func validStatus(s Status) bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// ProviderStoredBalance is the in-house e-wallet. Payments through it debit
// the user's stored balance; any other provider is settled externally.
const ProviderStoredBalance = "MartMinds Balance"

// CashDetails records a cash-on-delivery settlement. Change is computed at
// settlement time.
type CashDetails struct {
	CitizenID      string  `json:"citizen_id"`
	AmountReceived float64 `json:"amount_received"`
	Change         float64 `json:"change"`
}

// CardDetails stores only what is safe to keep: the masked number, holder
// and expiry. The CVV is validated and discarded.
type CardDetails struct {
	MaskedNumber string `json:"masked_number"`
	HolderName   string `json:"holder_name"`
	Expiry       string `json:"expiry"`
}

// EWalletDetails records the wallet used for settlement.
type EWalletDetails struct {
	WalletID string `json:"wallet_id"`
	Provider string `json:"provider"`
}

// Payment is one settlement attempt against an order. Amount always equals
// the order total at creation time.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Method    Method          `json:"method"`
	Amount    float64         `json:"amount"`
	Status    Status          `json:"status"`
	Cash      *CashDetails    `json:"cash,omitempty"`
	Card      *CardDetails    `json:"card,omitempty"`
	EWallet   *EWalletDetails `json:"ewallet,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Settled reports whether money has moved for this payment.
func (p *Payment) Settled() bool { return p.Status == StatusSuccess }

// MaskCardNumber keeps the last four digits and blanks the rest.
func MaskCardNumber(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

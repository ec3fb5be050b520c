package payment

import (
	"context"

	"github.com/martminds/martminds-backend/internal/apperr"
)

// DetailsRequest carries the raw, method-specific input for a new payment.
// Only the block matching the chosen method is read.
type DetailsRequest struct {
	// Cash
	CitizenID      string  `json:"citizen_id,omitempty"`
	AmountReceived float64 `json:"amount_received,omitempty"`

	// Credit card. The CVV is validated and never stored.
	CardNumber string `json:"card_number,omitempty"`
	HolderName string `json:"holder_name,omitempty"`
	Expiry     string `json:"expiry,omitempty"`
	CVV        string `json:"cvv,omitempty"`

	// E-wallet
	WalletID string `json:"wallet_id,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// Processor implements one payment method. Prepare validates raw input and
// attaches the storable details to the payment; Settle moves the money;
// Refund reverses a settled payment.
type Processor interface {
	Method() Method
	Prepare(p *Payment, req DetailsRequest) error
	Settle(ctx context.Context, p *Payment) error
	Refund(ctx context.Context, p *Payment) error
}

// Registry maps payment methods to their processors.
type Registry struct {
	processors map[Method]Processor
}

func NewRegistry(processors ...Processor) *Registry {
	r := &Registry{processors: make(map[Method]Processor)}
	for _, p := range processors {
		r.processors[p.Method()] = p
	}
	return r
}

// Get returns the processor for a method.
func (r *Registry) Get(method Method) (Processor, error) {
	p, ok := r.processors[method]
	if !ok {
		return nil, apperr.Validationf("unsupported payment method: %s", method)
	}
	return p, nil
}

package gateway

import (
	"context"
)

// OrderInput holds the parameters for creating a gateway-side order.
// Amount is in minor currency units (paise).
type OrderInput struct {
	Amount   int64
	Currency string
	Receipt  string
}

// Order is the gateway's server-side representation of a pending payment.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Gateway defines the interface for payment gateway integrations.
type Gateway interface {
	// Name returns the gateway name (e.g., "mock", "razorpay").
	Name() string

	// CreateOrder registers a payment intent with the gateway and returns
	// the gateway order used for client-side capture.
	CreateOrder(ctx context.Context, input *OrderInput) (*Order, error)
}

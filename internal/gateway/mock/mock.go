package mock

import (
	"context"

	"github.com/google/uuid"

	"github.com/shibinnakam/cochin-backoffice/internal/gateway"
)

// Gateway is a mock payment gateway that always succeeds.
// It is intended for development and testing purposes.
type Gateway struct{}

// NewGateway creates a new mock payment gateway.
func NewGateway() *Gateway {
	return &Gateway{}
}

// Name returns the gateway name.
func (g *Gateway) Name() string {
	return "mock"
}

// CreateOrder returns a fake gateway order that mirrors the input.
func (g *Gateway) CreateOrder(_ context.Context, input *gateway.OrderInput) (*gateway.Order, error) {
	return &gateway.Order{
		ID:       "order_mock_" + uuid.New().String(),
		Amount:   input.Amount,
		Currency: input.Currency,
		Receipt:  input.Receipt,
		Status:   "created",
	}, nil
}

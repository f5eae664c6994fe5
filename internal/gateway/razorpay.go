package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
	"github.com/shibinnakam/cochin-backoffice/pkg/httpclient"
)

// RazorpayGateway talks to the Razorpay orders API over HTTP. Calls go
// through the circuit-breaker-wrapped client so a flapping gateway degrades
// into fast failures instead of piled-up timeouts.
type RazorpayGateway struct {
	client    *httpclient.CircuitBreakerClient
	baseURL   string
	keyID     string
	keySecret string
	logger    *slog.Logger
}

// NewRazorpayGateway creates a Razorpay-backed gateway client.
func NewRazorpayGateway(client *httpclient.CircuitBreakerClient, baseURL, keyID, keySecret string, logger *slog.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		client:    client,
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		logger:    logger,
	}
}

// Name returns the gateway name.
func (g *RazorpayGateway) Name() string {
	return "razorpay"
}

// CreateOrder registers a payment intent with Razorpay.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, input *OrderInput) (*Order, error) {
	payload := map[string]any{
		"amount":   input.Amount,
		"currency": input.Currency,
		"receipt":  input.Receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(ctx, req)
	if err != nil {
		g.logger.ErrorContext(ctx, "gateway order creation failed",
			slog.String("gateway", g.Name()),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Wrap(apperrors.ErrPaymentFailed, "payment gateway unavailable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		g.logger.ErrorContext(ctx, "gateway rejected order",
			slog.String("gateway", g.Name()),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		return nil, apperrors.PaymentFailed(fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("decode gateway order: %w", err)
	}

	return &order, nil
}

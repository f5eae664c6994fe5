package handler

import (
	"log/slog"
	"net/http"

	"github.com/shibinnakam/cochin-backoffice/internal/service"
	"github.com/shibinnakam/cochin-backoffice/pkg/httputil"
	"github.com/shibinnakam/cochin-backoffice/pkg/validator"
)

// PaymentHandler exposes the payment intent and capture verification
// endpoints.
type PaymentHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(checkout *service.CheckoutService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{checkout: checkout, logger: logger}
}

// createOrderRequest carries the amount in major currency units (rupees);
// conversion to paise happens server-side.
type createOrderRequest struct {
	Amount   int64  `json:"amount" validate:"required,gt=0"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

type verifyPaymentRequest struct {
	OrderID          string `json:"order_id" validate:"required"`
	GatewayOrderID   string `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// CreateOrder handles POST /api/v1/payment/create-order.
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	intent, err := h.checkout.CreatePaymentIntent(r.Context(), req.Amount, req.Currency)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: intent})
}

// Verify handles POST /api/v1/payment/verify.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyPaymentRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	err := h.checkout.ConfirmPayment(r.Context(), service.ConfirmPaymentInput{
		OrderID:          req.OrderID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "payment verified",
	}})
}

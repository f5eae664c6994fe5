package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/service"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
	"github.com/shibinnakam/cochin-backoffice/pkg/httputil"
	"github.com/shibinnakam/cochin-backoffice/pkg/validator"
)

// OrderHandler exposes checkout and order history endpoints.
type OrderHandler struct {
	checkout *service.CheckoutService
	logger   *slog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(checkout *service.CheckoutService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{checkout: checkout, logger: logger}
}

type placeOrderRequest struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=COD Online"`
	PaymentRef    string `json:"payment_ref" validate:"omitempty,max=100"`
}

// Place handles POST /api/v1/orders/place/{userId}. The URL carries the user
// id for parity with the client contract; the guard has already checked it
// against the caller.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), chi.URLParam(r, "userId"), req.PaymentMethod, req.PaymentRef)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// List handles GET /api/v1/orders/user/{userId}.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.checkout.ListOrders(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: orders})
}

// Get handles GET /api/v1/orders/{id}. The caller must own the order or be
// an admin.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	p := PrincipalFromContext(r.Context())
	if order.UserID != p.ID && !p.IsAdmin() {
		httputil.WriteError(w, r, apperrors.Forbidden("not permitted for this account"), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

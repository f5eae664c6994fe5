package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/service"
	"github.com/shibinnakam/cochin-backoffice/pkg/httputil"
	"github.com/shibinnakam/cochin-backoffice/pkg/validator"
)

// CartHandler exposes the authenticated cart endpoints. The cart operated on
// is always the caller's own.
type CartHandler struct {
	cart   *service.CartService
	logger *slog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(cart *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{cart: cart, logger: logger}
}

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0,lte=10"`
}

type updateCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=10"`
}

// Get handles GET /api/v1/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())

	cart, err := h.cart.Get(r.Context(), p.ID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// Add handles POST /api/v1/cart/add.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := PrincipalFromContext(r.Context())
	cart, err := h.cart.AddItem(r.Context(), p.ID, req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// Update handles PUT /api/v1/cart/update.
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateCartRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	p := PrincipalFromContext(r.Context())
	cart, err := h.cart.UpdateQuantity(r.Context(), p.ID, req.ProductID, req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// Remove handles DELETE /api/v1/cart/remove/{productId}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())

	cart, err := h.cart.RemoveItem(r.Context(), p.ID, chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: cart})
}

// Clear handles DELETE /api/v1/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())

	if err := h.cart.Clear(r.Context(), p.ID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{
		"message": "cart cleared",
	}})
}

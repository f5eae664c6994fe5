package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/event"
	"github.com/shibinnakam/cochin-backoffice/internal/gateway"
	"github.com/shibinnakam/cochin-backoffice/internal/repository"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

const defaultCurrency = "INR"

// CheckoutService turns carts into orders and handles the online payment
// round trip against the gateway.
type CheckoutService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	cartRepo    repository.CartRepository
	gateway     gateway.Gateway
	verifier    *gateway.SignatureVerifier
	producer    *event.Producer
	logger      *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	gw gateway.Gateway,
	verifier *gateway.SignatureVerifier,
	producer *event.Producer,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		gateway:     gw,
		verifier:    verifier,
		producer:    producer,
		logger:      logger,
	}
}

// PaymentIntent is the client-facing handle for an online payment.
type PaymentIntent struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
}

// ConfirmPaymentInput holds the capture callback fields reported by the
// client after the gateway checkout completes.
type ConfirmPaymentInput struct {
	OrderID          string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// PlaceOrder converts the user's cart into an order. Every line is re-priced
// from the catalog; the cart's displayed prices are never trusted. For Online
// orders paymentRef carries the gateway capture id reported by the client.
// The cart is cleared afterwards on a best-effort basis.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID, method, paymentRef string) (*domain.Order, error) {
	if !domain.ValidPaymentMethod(method) {
		return nil, apperrors.InvalidInput("payment method must be COD or Online")
	}
	if method == domain.PaymentMethodOnline && paymentRef == "" {
		return nil, apperrors.InvalidInput("payment reference is required for online orders")
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidInput("cart is empty")
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if len(cart.Items) == 0 {
		return nil, apperrors.InvalidInput("cart is empty")
	}

	items := make([]domain.OrderItem, 0, len(cart.Items))
	var total int64
	for _, line := range cart.Items {
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound("product", line.ProductID)
			}
			return nil, fmt.Errorf("price product %s: %w", line.ProductID, err)
		}
		if !product.InStock {
			return nil, apperrors.InvalidInput(fmt.Sprintf("product %s is out of stock", product.Name))
		}

		unitPrice := product.SellingPrice()
		items = append(items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: unitPrice,
			Quantity:  line.Quantity,
		})
		total += unitPrice * int64(line.Quantity)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		Items:       items,
		TotalAmount: total,
		Method:      method,
		PaymentRef:  paymentRef,
		Status:      domain.InitialStatus(method),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed; a failed cart delete only leaves an orphan
	// behind, which Redis expiry collects.
	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after checkout",
			slog.String("user_id", userID),
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.String("method", method),
		slog.Int64("total_amount", order.TotalAmount),
	)

	return order, nil
}

// CreatePaymentIntent registers an order with the payment gateway. Amount is
// in major currency units (rupees) per the gateway's checkout contract and is
// converted to paise here.
func (s *CheckoutService) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (*PaymentIntent, error) {
	if amount <= 0 {
		return nil, apperrors.InvalidInput("amount must be positive")
	}
	if currency == "" {
		currency = defaultCurrency
	}

	receipt := fmt.Sprintf("receipt_%d", time.Now().UTC().UnixNano())
	gwOrder, err := s.gateway.CreateOrder(ctx, &gateway.OrderInput{
		Amount:   amount * 100,
		Currency: strings.ToUpper(currency),
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	s.logger.InfoContext(ctx, "payment intent created",
		slog.String("gateway", s.gateway.Name()),
		slog.String("gateway_order_id", gwOrder.ID),
		slog.Int64("amount", gwOrder.Amount),
	)

	return &PaymentIntent{
		GatewayOrderID: gwOrder.ID,
		Amount:         gwOrder.Amount,
		Currency:       gwOrder.Currency,
		Receipt:        gwOrder.Receipt,
	}, nil
}

// ConfirmPayment verifies the gateway capture signature and transitions the
// named order from Pending to Paid. A signature mismatch is an input error;
// nothing is ever marked paid on the client's say-so alone.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) error {
	if input.OrderID == "" || input.GatewayOrderID == "" || input.GatewayPaymentID == "" || input.Signature == "" {
		return apperrors.InvalidInput("order id, gateway order id, payment id, and signature are required")
	}

	if !s.verifier.Verify(input.GatewayOrderID, input.GatewayPaymentID, input.Signature) {
		s.logger.WarnContext(ctx, "payment signature mismatch",
			slog.String("order_id", input.OrderID),
			slog.String("gateway_order_id", input.GatewayOrderID),
		)
		return apperrors.InvalidInput("payment signature verification failed")
	}

	if err := s.orderRepo.MarkPaid(ctx, input.OrderID, input.GatewayPaymentID); err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if err := s.producer.PublishPaymentVerified(ctx, input.OrderID, input.GatewayOrderID, input.GatewayPaymentID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish payment.verified event",
			slog.String("order_id", input.OrderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "payment verified",
		slog.String("order_id", input.OrderID),
		slog.String("payment_id", input.GatewayPaymentID),
	)

	return nil
}

// GetOrder retrieves an order by its ID.
func (s *CheckoutService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.orderRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

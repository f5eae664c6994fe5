package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/event"
	"github.com/shibinnakam/cochin-backoffice/internal/gateway"
	"github.com/shibinnakam/cochin-backoffice/internal/repository/repositorytest"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

const testGatewaySecret = "test-gateway-secret"

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Name() string { return "test" }

func (m *mockGateway) CreateOrder(ctx context.Context, input *gateway.OrderInput) (*gateway.Order, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}

type checkoutFixture struct {
	svc      *CheckoutService
	orders   *repositorytest.MockOrderRepository
	products *repositorytest.MockProductRepository
	carts    *repositorytest.MockCartRepository
	gateway  *mockGateway
}

func newCheckoutFixture() *checkoutFixture {
	logger := testLogger()
	f := &checkoutFixture{
		orders:   new(repositorytest.MockOrderRepository),
		products: new(repositorytest.MockProductRepository),
		carts:    new(repositorytest.MockCartRepository),
		gateway:  new(mockGateway),
	}
	f.svc = NewCheckoutService(
		f.orders, f.products, f.carts,
		f.gateway,
		gateway.NewSignatureVerifier(testGatewaySecret),
		event.NewProducer(nil, logger),
		logger,
	)
	return f
}

func signPayment(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testGatewaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCheckoutService_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("prices lines from the catalog, not the cart", func(t *testing.T) {
		f := newCheckoutFixture()

		// The cart claims a one-paisa price; the catalog says otherwise.
		f.carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items: []domain.CartItem{
				{ProductID: "prod-1", Name: "Chair", Price: 1, Quantity: 2},
			},
		}, nil)
		f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID:      "prod-1",
			Name:    "Chair",
			Price:   250000,
			InStock: true,
		}, nil)
		f.orders.On("Create", ctx, mock.AnythingOfType("*domain.Order")).Return(nil)
		f.carts.On("Delete", ctx, "user-1").Return(nil)

		order, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodCOD, "")
		require.NoError(t, err)

		assert.Equal(t, int64(500000), order.TotalAmount)
		assert.Equal(t, int64(250000), order.Items[0].UnitPrice)
		assert.Equal(t, domain.OrderStatusPending, order.Status)
	})

	t.Run("uses discount price when set", func(t *testing.T) {
		f := newCheckoutFixture()

		f.carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Quantity: 1}},
		}, nil)
		f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID:            "prod-1",
			Price:         250000,
			DiscountPrice: 199900,
			InStock:       true,
		}, nil)
		f.orders.On("Create", ctx, mock.Anything).Return(nil)
		f.carts.On("Delete", ctx, "user-1").Return(nil)

		order, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodCOD, "")
		require.NoError(t, err)
		assert.Equal(t, int64(199900), order.TotalAmount)
	})

	t.Run("online orders start paid and keep the capture id", func(t *testing.T) {
		f := newCheckoutFixture()

		f.carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Quantity: 1}},
		}, nil)
		f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID: "prod-1", Price: 100, InStock: true,
		}, nil)
		f.orders.On("Create", ctx, mock.MatchedBy(func(o *domain.Order) bool {
			return o.Status == domain.OrderStatusPaid && o.PaymentRef == "pay_abc"
		})).Return(nil)
		f.carts.On("Delete", ctx, "user-1").Return(nil)

		order, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodOnline, "pay_abc")
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPaid, order.Status)
		assert.Equal(t, "pay_abc", order.PaymentRef)
		f.orders.AssertExpectations(t)
	})

	t.Run("online order without a payment reference", func(t *testing.T) {
		f := newCheckoutFixture()

		_, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodOnline, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.carts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("missing cart is an empty cart", func(t *testing.T) {
		f := newCheckoutFixture()

		f.carts.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

		_, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodCOD, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cart with no lines", func(t *testing.T) {
		f := newCheckoutFixture()

		f.carts.On("Get", ctx, "user-1").Return(&domain.Cart{UserID: "user-1"}, nil)

		_, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodCOD, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("invalid payment method", func(t *testing.T) {
		f := newCheckoutFixture()

		_, err := f.svc.PlaceOrder(ctx, "user-1", "Bitcoin", "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.carts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("out of stock product blocks checkout", func(t *testing.T) {
		f := newCheckoutFixture()

		f.carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Quantity: 1}},
		}, nil)
		f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID: "prod-1", Name: "Chair", Price: 100, InStock: false,
		}, nil)

		_, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodCOD, "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("delisted product blocks checkout", func(t *testing.T) {
		f := newCheckoutFixture()

		f.carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-gone", Quantity: 1}},
		}, nil)
		f.products.On("GetByID", ctx, "prod-gone").
			Return(nil, apperrors.NotFound("product", "prod-gone"))

		_, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodCOD, "")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("cart delete failure does not fail the order", func(t *testing.T) {
		f := newCheckoutFixture()

		f.carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Quantity: 1}},
		}, nil)
		f.products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID: "prod-1", Price: 100, InStock: true,
		}, nil)
		f.orders.On("Create", ctx, mock.Anything).Return(nil)
		f.carts.On("Delete", ctx, "user-1").Return(errors.New("redis down"))

		order, err := f.svc.PlaceOrder(ctx, "user-1", domain.PaymentMethodCOD, "")
		require.NoError(t, err)
		assert.NotEmpty(t, order.ID)
	})
}

func TestCheckoutService_CreatePaymentIntent(t *testing.T) {
	ctx := context.Background()

	t.Run("converts major units to paise", func(t *testing.T) {
		f := newCheckoutFixture()

		f.gateway.On("CreateOrder", ctx, mock.MatchedBy(func(in *gateway.OrderInput) bool {
			return in.Amount == 149900 && in.Currency == "INR"
		})).Return(&gateway.Order{
			ID: "order_gw_1", Amount: 149900, Currency: "INR", Receipt: "receipt_1",
		}, nil)

		intent, err := f.svc.CreatePaymentIntent(ctx, 1499, "")
		require.NoError(t, err)

		assert.Equal(t, "order_gw_1", intent.GatewayOrderID)
		assert.Equal(t, int64(149900), intent.Amount)
		f.gateway.AssertExpectations(t)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		f := newCheckoutFixture()

		_, err := f.svc.CreatePaymentIntent(ctx, 0, "INR")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = f.svc.CreatePaymentIntent(ctx, -500, "INR")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		f.gateway.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure propagates", func(t *testing.T) {
		f := newCheckoutFixture()

		f.gateway.On("CreateOrder", ctx, mock.Anything).
			Return(nil, apperrors.PaymentFailed("gateway returned status 502"))

		_, err := f.svc.CreatePaymentIntent(ctx, 1499, "INR")
		assert.ErrorIs(t, err, apperrors.ErrPaymentFailed)
	})
}

func TestCheckoutService_ConfirmPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("valid signature marks the order paid", func(t *testing.T) {
		f := newCheckoutFixture()

		f.orders.On("MarkPaid", ctx, "order-1", "pay_abc").Return(nil)

		err := f.svc.ConfirmPayment(ctx, ConfirmPaymentInput{
			OrderID:          "order-1",
			GatewayOrderID:   "order_gw_1",
			GatewayPaymentID: "pay_abc",
			Signature:        signPayment("order_gw_1", "pay_abc"),
		})
		require.NoError(t, err)
		f.orders.AssertExpectations(t)
	})

	t.Run("forged signature never reaches the store", func(t *testing.T) {
		f := newCheckoutFixture()

		err := f.svc.ConfirmPayment(ctx, ConfirmPaymentInput{
			OrderID:          "order-1",
			GatewayOrderID:   "order_gw_1",
			GatewayPaymentID: "pay_abc",
			Signature:        "deadbeef",
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.orders.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("signature over different ids is rejected", func(t *testing.T) {
		f := newCheckoutFixture()

		err := f.svc.ConfirmPayment(ctx, ConfirmPaymentInput{
			OrderID:          "order-1",
			GatewayOrderID:   "order_gw_1",
			GatewayPaymentID: "pay_abc",
			Signature:        signPayment("order_gw_1", "pay_other"),
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newCheckoutFixture()

		err := f.svc.ConfirmPayment(ctx, ConfirmPaymentInput{OrderID: "order-1"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("already-paid order reports not found", func(t *testing.T) {
		f := newCheckoutFixture()

		f.orders.On("MarkPaid", ctx, "order-1", "pay_abc").
			Return(apperrors.NotFound("pending order", "order-1"))

		err := f.svc.ConfirmPayment(ctx, ConfirmPaymentInput{
			OrderID:          "order-1",
			GatewayOrderID:   "order_gw_1",
			GatewayPaymentID: "pay_abc",
			Signature:        signPayment("order_gw_1", "pay_abc"),
		})
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

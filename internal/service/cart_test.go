package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/repository/repositorytest"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

func newCartService() (*CartService, *repositorytest.MockCartRepository, *repositorytest.MockProductRepository) {
	carts := new(repositorytest.MockCartRepository)
	products := new(repositorytest.MockProductRepository)
	return NewCartService(carts, products, testLogger()), carts, products
}

func TestCartService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("missing cart comes back empty", func(t *testing.T) {
		svc, carts, _ := newCartService()
		carts.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

		cart, err := svc.Get(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		assert.Equal(t, "user-1", cart.UserID)
	})
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("captures the catalog selling price", func(t *testing.T) {
		svc, carts, products := newCartService()

		products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID:            "prod-1",
			Name:          "Chair",
			Price:         250000,
			DiscountPrice: 199900,
			InStock:       true,
		}, nil)
		carts.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))
		carts.On("Save", ctx, mock.MatchedBy(func(c *domain.Cart) bool {
			return len(c.Items) == 1 && c.Items[0].Price == 199900 && c.Items[0].Quantity == 2
		})).Return(nil)

		cart, err := svc.AddItem(ctx, "user-1", "prod-1", 2)
		require.NoError(t, err)
		assert.Equal(t, int64(399800), cart.TotalAmount())
	})

	t.Run("merges quantity into existing line", func(t *testing.T) {
		svc, carts, products := newCartService()

		products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID: "prod-1", Price: 100, InStock: true,
		}, nil)
		carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Price: 100, Quantity: 2}},
		}, nil)
		carts.On("Save", ctx, mock.Anything).Return(nil)

		cart, err := svc.AddItem(ctx, "user-1", "prod-1", 3)
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 5, cart.Items[0].Quantity)
	})

	t.Run("caps merged quantity", func(t *testing.T) {
		svc, carts, products := newCartService()

		products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID: "prod-1", Price: 100, InStock: true,
		}, nil)
		carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Price: 100, Quantity: 8}},
		}, nil)
		carts.On("Save", ctx, mock.Anything).Return(nil)

		cart, err := svc.AddItem(ctx, "user-1", "prod-1", 5)
		require.NoError(t, err)
		assert.Equal(t, maxCartQuantity, cart.Items[0].Quantity)
	})

	t.Run("rejects out of stock product", func(t *testing.T) {
		svc, carts, products := newCartService()

		products.On("GetByID", ctx, "prod-1").Return(&domain.Product{
			ID: "prod-1", InStock: false,
		}, nil)

		_, err := svc.AddItem(ctx, "user-1", "prod-1", 1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects bad quantities", func(t *testing.T) {
		svc, _, products := newCartService()

		_, err := svc.AddItem(ctx, "user-1", "prod-1", 0)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		_, err = svc.AddItem(ctx, "user-1", "prod-1", maxCartQuantity+1)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

		products.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _, products := newCartService()

		products.On("GetByID", ctx, "ghost").Return(nil, apperrors.NotFound("product", "ghost"))

		_, err := svc.AddItem(ctx, "user-1", "ghost", 1)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestCartService_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the line quantity", func(t *testing.T) {
		svc, carts, _ := newCartService()

		carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Quantity: 1}},
		}, nil)
		carts.On("Save", ctx, mock.Anything).Return(nil)

		cart, err := svc.UpdateQuantity(ctx, "user-1", "prod-1", 4)
		require.NoError(t, err)
		assert.Equal(t, 4, cart.Items[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		svc, carts, _ := newCartService()

		carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items:  []domain.CartItem{{ProductID: "prod-1", Quantity: 3}},
		}, nil)
		carts.On("Save", ctx, mock.Anything).Return(nil)

		cart, err := svc.UpdateQuantity(ctx, "user-1", "prod-1", 0)
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
	})

	t.Run("line not in cart", func(t *testing.T) {
		svc, carts, _ := newCartService()

		carts.On("Get", ctx, "user-1").Return(&domain.Cart{UserID: "user-1"}, nil)

		_, err := svc.UpdateQuantity(ctx, "user-1", "ghost", 2)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("no cart at all", func(t *testing.T) {
		svc, carts, _ := newCartService()

		carts.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

		_, err := svc.UpdateQuantity(ctx, "user-1", "prod-1", 2)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("drops the line", func(t *testing.T) {
		svc, carts, _ := newCartService()

		carts.On("Get", ctx, "user-1").Return(&domain.Cart{
			UserID: "user-1",
			Items: []domain.CartItem{
				{ProductID: "prod-1", Quantity: 1},
				{ProductID: "prod-2", Quantity: 2},
			},
		}, nil)
		carts.On("Save", ctx, mock.Anything).Return(nil)

		cart, err := svc.RemoveItem(ctx, "user-1", "prod-1")
		require.NoError(t, err)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, "prod-2", cart.Items[0].ProductID)
	})

	t.Run("removing from a missing cart is fine", func(t *testing.T) {
		svc, carts, _ := newCartService()

		carts.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

		cart, err := svc.RemoveItem(ctx, "user-1", "prod-1")
		require.NoError(t, err)
		assert.Empty(t, cart.Items)
		carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()

	svc, carts, _ := newCartService()
	carts.On("Delete", ctx, "user-1").Return(nil)

	err := svc.Clear(ctx, "user-1")
	require.NoError(t, err)
	carts.AssertExpectations(t)
}

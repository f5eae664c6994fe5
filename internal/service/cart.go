package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/internal/repository"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// maxCartQuantity caps the quantity of a single line.
const maxCartQuantity = 10

// CartService manages per-user shopping carts backed by Redis.
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// Get returns the user's cart. A user without a cart gets an empty one
// rather than an error.
func (s *CartService) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.emptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// AddItem adds a product to the cart, merging quantity into an existing line.
// The stored line price is the catalog selling price at add time.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be positive")
	}
	if quantity > maxCartQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", maxCartQuantity))
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("lookup product: %w", err)
	}
	if !product.InStock {
		return nil, apperrors.InvalidInput("product is out of stock")
	}

	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.AddItem(domain.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.SellingPrice(),
		Quantity:  quantity,
		ImageURL:  product.ImageURL,
	})

	if idx := cart.FindItemIndex(productID); cart.Items[idx].Quantity > maxCartQuantity {
		cart.Items[idx].Quantity = maxCartQuantity
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "cart item added",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > maxCartQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", maxCartQuantity))
	}

	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	idx := cart.FindItemIndex(productID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}

	if quantity == 0 {
		cart.RemoveItem(productID)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// RemoveItem drops a line from the cart. Removing an absent line is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*domain.Cart, error) {
	cart, err := s.cartRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.emptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	cart.RemoveItem(productID)

	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}

	return cart, nil
}

// Clear removes the user's cart entirely.
func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *CartService) save(ctx context.Context, cart *domain.Cart) error {
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartService) emptyCart(userID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		UserID:    userID,
		Items:     []domain.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

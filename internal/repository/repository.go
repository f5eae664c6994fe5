package repository

import (
	"context"
	"time"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
)

// UserRepository defines the interface for self-registered account persistence.
type UserRepository interface {
	// Create inserts a new user into the store. Returns AlreadyExists if the
	// email or Google id is taken (enforced by DB constraint).
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their lowercase email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByGoogleID retrieves a user by their linked Google account id.
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// GetByResetTokenHash retrieves the user owning a live reset ticket.
	GetByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)

	// Update modifies an existing user in the store.
	Update(ctx context.Context, user *domain.User) error

	// SetResetTicket stores a reset ticket on the user, replacing any prior one.
	SetResetTicket(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error

	// ClearResetTicket removes the user's reset ticket.
	ClearResetTicket(ctx context.Context, userID string) error

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]domain.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int, error)
}

// StaffRepository defines the interface for worker account persistence.
type StaffRepository interface {
	// Create inserts a new staff record. Returns AlreadyExists if the email
	// is taken.
	Create(ctx context.Context, staff *domain.Staff) error

	// GetByID retrieves a staff member by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Staff, error)

	// GetByEmail retrieves a staff member by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.Staff, error)

	// Update modifies an existing staff record.
	Update(ctx context.Context, staff *domain.Staff) error

	// Delete removes a staff record by its identifier.
	Delete(ctx context.Context, id string) error

	// List returns all staff ordered by creation time.
	List(ctx context.Context) ([]domain.Staff, error)

	// Count returns the total number of staff records.
	Count(ctx context.Context) (int, error)
}

// OrderRepository defines the interface for order persistence.
type OrderRepository interface {
	// Create inserts a new order with its lines.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order with its lines.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// ListByUserID returns all orders for the given user, newest first.
	ListByUserID(ctx context.Context, userID string) ([]domain.Order, error)

	// MarkPaid transitions a Pending order to Paid and attaches the payment
	// reference. Returns NotFound if the order does not exist or is not
	// Pending.
	MarkPaid(ctx context.Context, orderID, paymentRef string) error
}

// ProductRepository is the read-only catalog view the checkout engine prices
// against.
type ProductRepository interface {
	// GetByID retrieves a product by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// ResignationRepository defines the interface for resignation persistence.
type ResignationRepository interface {
	// Create inserts a new resignation request.
	Create(ctx context.Context, r *domain.Resignation) error

	// GetByID retrieves a resignation by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Resignation, error)

	// List returns all resignations, newest first.
	List(ctx context.Context) ([]domain.Resignation, error)

	// Update modifies an existing resignation.
	Update(ctx context.Context, r *domain.Resignation) error
}

// LeaveRepository defines the interface for leave request persistence.
type LeaveRepository interface {
	// Create inserts a new leave request.
	Create(ctx context.Context, l *domain.Leave) error

	// GetByID retrieves a leave request by its identifier.
	GetByID(ctx context.Context, id string) (*domain.Leave, error)

	// ListByStaffID returns all leave requests for the given staff member.
	ListByStaffID(ctx context.Context, staffID string) ([]domain.Leave, error)

	// List returns all leave requests, newest first.
	List(ctx context.Context) ([]domain.Leave, error)

	// Update modifies an existing leave request.
	Update(ctx context.Context, l *domain.Leave) error
}

// CartRepository defines the interface for cart persistence.
type CartRepository interface {
	// Get retrieves the cart for the given user. Returns NotFound if absent.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// Save stores the cart, replacing any existing one.
	Save(ctx context.Context, cart *domain.Cart) error

	// Delete removes the cart entirely. Deleting an absent cart is not an error.
	Delete(ctx context.Context, userID string) error
}

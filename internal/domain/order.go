package domain

import "time"

// Order status values.
const (
	OrderStatusPending   = "Pending"
	OrderStatusPaid      = "Paid"
	OrderStatusShipped   = "Shipped"
	OrderStatusDelivered = "Delivered"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD    = "COD"
	PaymentMethodOnline = "Online"
)

// Order is an immutable record of a completed checkout. Unit prices are the
// catalog's authoritative prices at the moment of creation, in paise.
type Order struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	Items       []OrderItem `json:"items"`
	TotalAmount int64       `json:"total_amount"`
	Method      string      `json:"method"`
	PaymentRef  string      `json:"payment_ref,omitempty"`
	Status      string      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// ValidPaymentMethod checks whether the given string is an accepted payment method.
func ValidPaymentMethod(method string) bool {
	return method == PaymentMethodCOD || method == PaymentMethodOnline
}

// InitialStatus returns the order status assigned at creation for the given
// payment method: Paid for online payments, Pending for cash on delivery.
func InitialStatus(method string) string {
	if method == PaymentMethodOnline {
		return OrderStatusPaid
	}
	return OrderStatusPending
}

// CanTransition reports whether an order status change is allowed. Only the
// Pending to Paid transition happens inside this system; the rest belong to
// fulfillment.
func CanTransition(from, to string) bool {
	switch from {
	case OrderStatusPending:
		return to == OrderStatusPaid || to == OrderStatusShipped
	case OrderStatusPaid:
		return to == OrderStatusShipped
	case OrderStatusShipped:
		return to == OrderStatusDelivered
	}
	return false
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	"github.com/shibinnakam/cochin-backoffice/pkg/database"
	apperrors "github.com/shibinnakam/cochin-backoffice/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order and its lines atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderQuery := `
		INSERT INTO orders (id, user_id, total_amount, method, payment_ref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.TotalAmount,
		o.Method,
		o.PaymentRef,
		o.Status,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (order_id, product_id, name, unit_price, quantity)
		VALUES ($1, $2, $3, $4, $5)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			o.ID,
			item.ProductID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its lines.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, method, payment_ref, status, created_at, updated_at
		FROM orders
		WHERE id = $1`

	var o domain.Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.Method,
		&o.PaymentRef,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	items, err := r.loadItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// ListByUserID returns all orders for the given user, newest first.
func (r *OrderRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `
		SELECT id, user_id, total_amount, method, payment_ref, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.TotalAmount,
			&o.Method,
			&o.PaymentRef,
			&o.Status,
			&o.CreatedAt,
			&o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	return orders, nil
}

// MarkPaid transitions a Pending order to Paid and attaches the payment
// reference. The status predicate in the WHERE clause makes the transition
// atomic under concurrent verification callbacks.
func (r *OrderRepository) MarkPaid(ctx context.Context, orderID, paymentRef string) error {
	query := `
		UPDATE orders
		SET status = $1, payment_ref = $2, updated_at = $3
		WHERE id = $4 AND status = $5`

	ct, err := r.db.Exec(ctx, query,
		domain.OrderStatusPaid,
		paymentRef,
		time.Now().UTC(),
		orderID,
		domain.OrderStatusPending,
	)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("pending order", orderID)
	}

	return nil
}

func (r *OrderRepository) loadItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	query := `
		SELECT product_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.Name, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}

	if items == nil {
		items = []domain.OrderItem{}
	}

	return items, nil
}

package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shibinnakam/cochin-backoffice/internal/domain"
	pkgkafka "github.com/shibinnakam/cochin-backoffice/pkg/kafka"
)

// Kafka topic constants for back-office domain events.
const (
	TopicUserRegistered     = "backoffice.user.registered"
	TopicUserPasswordReset  = "backoffice.user.password_reset"
	TopicOrderPlaced        = "backoffice.order.placed"
	TopicPaymentVerified    = "backoffice.payment.verified"
	TopicStaffApproved      = "backoffice.staff.approved"
	TopicResignationDecided = "backoffice.resignation.decided"
)

// Aggregate type constants.
const (
	AggregateTypeUser        = "user"
	AggregateTypeOrder       = "order"
	AggregateTypeStaff       = "staff"
	AggregateTypeResignation = "resignation"
)

// Source identifier for events originating from this service.
const SourceBackoffice = "backoffice"

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UserPasswordResetData is the payload for a user.password_reset event.
type UserPasswordResetData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	TotalAmount int64  `json:"total_amount"`
	Method      string `json:"method"`
	Status      string `json:"status"`
	ItemCount   int    `json:"item_count"`
}

// PaymentVerifiedData is the payload for a payment.verified event.
type PaymentVerifiedData struct {
	OrderID        string `json:"order_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	PaymentID      string `json:"payment_id"`
}

// StaffApprovedData is the payload for a staff.approved event.
type StaffApprovedData struct {
	StaffID string `json:"staff_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// ResignationDecidedData is the payload for a resignation.decided event.
type ResignationDecidedData struct {
	ResignationID string `json:"resignation_id"`
	StaffID       string `json:"staff_id"`
	Status        string `json:"status"`
}

// Producer publishes back-office domain events to Kafka. A Producer built
// over a nil Kafka producer publishes nothing, which is how tests and
// broker-less development run.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	if p.kafka == nil {
		p.logger.DebugContext(ctx, "event publishing disabled, dropping event",
			slog.String("topic", topic),
			slog.String("aggregate_id", aggregateID),
		)
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceBackoffice, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	return p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, UserRegisteredData{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}

// PublishUserPasswordReset publishes a user.password_reset event.
func (p *Producer) PublishUserPasswordReset(ctx context.Context, userID, email string) error {
	return p.publish(ctx, TopicUserPasswordReset, userID, AggregateTypeUser, UserPasswordResetData{
		UserID: userID,
		Email:  email,
	})
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, TopicOrderPlaced, order.ID, AggregateTypeOrder, OrderPlacedData{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Method:      order.Method,
		Status:      order.Status,
		ItemCount:   len(order.Items),
	})
}

// PublishPaymentVerified publishes a payment.verified event.
func (p *Producer) PublishPaymentVerified(ctx context.Context, orderID, gatewayOrderID, paymentID string) error {
	return p.publish(ctx, TopicPaymentVerified, orderID, AggregateTypeOrder, PaymentVerifiedData{
		OrderID:        orderID,
		GatewayOrderID: gatewayOrderID,
		PaymentID:      paymentID,
	})
}

// PublishStaffApproved publishes a staff.approved event.
func (p *Producer) PublishStaffApproved(ctx context.Context, staff *domain.Staff) error {
	return p.publish(ctx, TopicStaffApproved, staff.ID, AggregateTypeStaff, StaffApprovedData{
		StaffID: staff.ID,
		Email:   staff.Email,
		Name:    staff.Name,
	})
}

// PublishResignationDecided publishes a resignation.decided event.
func (p *Producer) PublishResignationDecided(ctx context.Context, r *domain.Resignation) error {
	return p.publish(ctx, TopicResignationDecided, r.ID, AggregateTypeResignation, ResignationDecidedData{
		ResignationID: r.ID,
		StaffID:       r.StaffID,
		Status:        r.Status,
	})
}

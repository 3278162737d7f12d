// Package notification sends customer emails in reaction to order events.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Message is a single outgoing notification
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages to customers
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NotificationHandler reacts to order events by emailing the customer.
// Send failures are logged and never returned. A failed recipient lookup is
// returned so the outbox retries the entry.
type NotificationHandler struct {
	userRepo identity.UserRepository
	sender   Sender
	logger   *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(userRepo identity.UserRepository, sender Sender, logger *zap.Logger) *NotificationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationHandler{
		userRepo: userRepo,
		sender:   sender,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{order.EventTypeOrderPlaced, order.EventTypeOrderStatusChanged}
}

// Handle builds and sends the message for one event
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		userID int64
		build  func(u *identity.User) Message
	)
	switch e := event.(type) {
	case *order.OrderPlacedEvent:
		userID = e.UserID
		build = func(u *identity.User) Message { return OrderConfirmation(u.Name, e) }
	case *order.OrderStatusChangedEvent:
		userID = e.UserID
		build = func(u *identity.User) Message { return StatusUpdate(u.Name, e) }
	default:
		h.logger.Debug("ignoring event", zap.String("event_type", event.EventType()))
		return nil
	}

	log := h.logger.With(
		zap.String("event_id", event.EventID().String()),
		zap.String("event_type", event.EventType()),
		zap.Int64("user_id", userID),
	)

	user, err := h.userRepo.FindByID(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		log.Warn("notification skipped: user no longer exists")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load recipient %d: %w", userID, err)
	}

	msg := build(user)
	msg.To = user.Email
	if err := h.sender.Send(ctx, msg); err != nil {
		log.Warn("notification not delivered", zap.String("subject", msg.Subject), zap.Error(err))
		return nil
	}

	log.Info("notification sent", zap.String("subject", msg.Subject))
	return nil
}

// OrderConfirmation renders the message sent after checkout
func OrderConfirmation(name string, e *order.OrderPlacedEvent) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	b.WriteString("Your order has been confirmed!\n\n")
	fmt.Fprintf(&b, "Payment Method: %s\n", e.PaymentMethod)
	fmt.Fprintf(&b, "Total Items: %d\n\n", len(e.Items))
	b.WriteString("Thank you for shopping with us!\n")
	return Message{Subject: "Order Confirmation", Body: b.String()}
}

// StatusUpdate renders the message sent when an order changes status
func StatusUpdate(name string, e *order.OrderStatusChangedEvent) Message {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour order #%d status has been updated to: %s\n\nThank you for shopping with us!\n",
		name, e.OrderID, strings.ToUpper(e.NewStatus.String()),
	)
	return Message{Subject: "Order Status Update", Body: body}
}

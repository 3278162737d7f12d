package order

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeOrder    = "Order"
	AggregateTypeCustomer = "Customer"
)

// Event type constants
const (
	EventTypeOrderPlaced        = "OrderPlaced"
	EventTypeOrderStatusChanged = "OrderStatusChanged"
)

// PlacedItem describes one order created by a checkout
type PlacedItem struct {
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderPlacedEvent is raised once per successful checkout, covering every
// order the checkout created. The aggregate is the purchasing customer.
type OrderPlacedEvent struct {
	shared.EventMeta
	UserID        int64           `json:"user_id"`
	Items         []PlacedItem    `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(userID int64, items []PlacedItem, paymentMethod string) *OrderPlacedEvent {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return &OrderPlacedEvent{
		EventMeta: shared.NewEventMeta(EventTypeOrderPlaced, AggregateTypeCustomer, userID),
		UserID:          userID,
		Items:           items,
		Total:           total,
		PaymentMethod:   paymentMethod,
	}
}

// EventType returns the event type name
func (e *OrderPlacedEvent) EventType() string {
	return EventTypeOrderPlaced
}

// OrderIDs returns the IDs of all orders in the event
func (e *OrderPlacedEvent) OrderIDs() []int64 {
	ids := make([]int64, len(e.Items))
	for i, it := range e.Items {
		ids[i] = it.OrderID
	}
	return ids
}

// OrderStatusChangedEvent is raised on every status transition
type OrderStatusChangedEvent struct {
	shared.EventMeta
	OrderID   int64  `json:"order_id"`
	UserID    int64  `json:"user_id"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(o *Order, old Status) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		EventMeta: shared.NewEventMeta(EventTypeOrderStatusChanged, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		UserID:          o.UserID,
		OldStatus:       old,
		NewStatus:       o.Status,
	}
}

// EventType returns the event type name
func (e *OrderStatusChangedEvent) EventType() string {
	return EventTypeOrderStatusChanged
}

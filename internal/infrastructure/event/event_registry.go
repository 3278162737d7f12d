package event

import "github.com/storefront/backend/internal/domain/order"

// RegisterAllEvents registers every storefront event type with the serializer
// so the outbox processor can rebuild events from stored payloads.
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(
		&order.OrderPlacedEvent{},
		&order.OrderStatusChangedEvent{},
	)
}

package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact about a customer or order that other parts of the
// shop react to through the outbox.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() int64
	AggregateType() string
}

// EventMeta is embedded by every concrete event and satisfies DomainEvent.
// Its fields travel inside the outbox payload next to the event body.
type EventMeta struct {
	ID      uuid.UUID `json:"event_id"`
	Type    string    `json:"event_type"`
	At      time.Time `json:"occurred_at"`
	Subject int64     `json:"subject_id"`
	Kind    string    `json:"subject_kind"`
}

// NewEventMeta stamps a fresh ID and the current time. subjectKind names
// what subjectID refers to, for example "Order" or "Customer".
func NewEventMeta(eventType, subjectKind string, subjectID int64) EventMeta {
	return EventMeta{
		ID:      uuid.New(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Subject: subjectID,
		Kind:    subjectKind,
	}
}

func (m *EventMeta) EventID() uuid.UUID    { return m.ID }
func (m *EventMeta) EventType() string     { return m.Type }
func (m *EventMeta) OccurredAt() time.Time { return m.At }
func (m *EventMeta) AggregateID() int64    { return m.Subject }
func (m *EventMeta) AggregateType() string { return m.Kind }

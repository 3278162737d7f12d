package shared

// BaseAggregateRoot carries the version column used for optimistic locking
// and the events recorded since the aggregate was last saved.
type BaseAggregateRoot struct {
	BaseEntity
	Version int
	pending []DomainEvent
}

func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Changed bumps the version and queues event for publication.
func (a *BaseAggregateRoot) Changed(event DomainEvent) {
	a.Version++
	a.pending = append(a.pending, event)
}

// PendingEvents returns the events queued by Changed.
func (a *BaseAggregateRoot) PendingEvents() []DomainEvent {
	return a.pending
}

// EventsPublished drops the queued events once they reached the outbox.
func (a *BaseAggregateRoot) EventsPublished() {
	a.pending = nil
}

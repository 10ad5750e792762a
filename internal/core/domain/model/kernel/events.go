package kernel

import "time"

// DomainEvent is a fact recorded by an aggregate during a state change.
type DomainEvent interface {
	EventName() string
	AggregateID() UUID
	OccurredAt() time.Time
}

// Aggregate exposes the events recorded since the last clear.
type Aggregate interface {
	DomainEvents() []DomainEvent
	ClearDomainEvents()
}

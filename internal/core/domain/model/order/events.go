package order

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
)

const StatusChangedEventName = "order.status_changed"

// StatusChanged is recorded on every lifecycle transition.
type StatusChanged struct {
	OrderID  kernel.UUID
	DriverID *kernel.UUID
	From     Status
	To       Status
	At       time.Time
}

func (e StatusChanged) EventName() string {
	return StatusChangedEventName
}

func (e StatusChanged) AggregateID() kernel.UUID {
	return e.OrderID
}

func (e StatusChanged) OccurredAt() time.Time {
	return e.At
}

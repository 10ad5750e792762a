// Package eventbus fans committed domain events out to in-process
// subscribers (the websocket live feed) and to external sinks (kafka).
package eventbus

import (
	"time"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
)

// Envelope is the wire form of a domain event shared by every sink.
type Envelope struct {
	Name        string         `json:"name"`
	AggregateID string         `json:"aggregateId"`
	OccurredAt  time.Time      `json:"occurredAt"`
	Payload     map[string]any `json:"payload,omitempty"`
}

// NewEnvelope converts a domain event. Unknown event types keep only the
// common fields.
func NewEnvelope(event kernel.DomainEvent) Envelope {
	env := Envelope{
		Name:        event.EventName(),
		AggregateID: event.AggregateID().String(),
		OccurredAt:  event.OccurredAt().UTC(),
	}

	switch e := event.(type) {
	case order.StatusChanged:
		env.Payload = map[string]any{
			"orderId": e.OrderID.String(),
			"from":    e.From.String(),
			"to":      e.To.String(),
		}
		if e.DriverID != nil {
			env.Payload["driverId"] = e.DriverID.String()
		}
	case driver.PositionChanged:
		env.Payload = map[string]any{
			"driverId": e.DriverID.String(),
			"lat":      e.Position.Lat(),
			"lng":      e.Position.Lng(),
		}
	case driver.RouteChanged:
		env.Payload = map[string]any{
			"driverId":  e.DriverID.String(),
			"stops":     e.Stops,
			"confirmed": e.Confirmed,
		}
	}

	return env
}

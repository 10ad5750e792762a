package driver

import (
	"time"

	"lastmile/internal/core/domain/model/kernel"
)

const (
	PositionChangedEventName = "driver.position_changed"
	RouteChangedEventName    = "driver.route_changed"
)

// PositionChanged is recorded whenever the driver's position moves.
type PositionChanged struct {
	DriverID kernel.UUID
	Position kernel.Position
	At       time.Time
}

func (e PositionChanged) EventName() string        { return PositionChangedEventName }
func (e PositionChanged) AggregateID() kernel.UUID { return e.DriverID }
func (e PositionChanged) OccurredAt() time.Time    { return e.At }

// RouteChanged is recorded when a route is confirmed or cleared.
type RouteChanged struct {
	DriverID  kernel.UUID
	Stops     int
	Confirmed bool
	At        time.Time
}

func (e RouteChanged) EventName() string        { return RouteChangedEventName }
func (e RouteChanged) AggregateID() kernel.UUID { return e.DriverID }
func (e RouteChanged) OccurredAt() time.Time    { return e.At }

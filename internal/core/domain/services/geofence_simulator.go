package services

import (
	"time"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
)

const (
	// SimulatedSpeedKph is the constant travel speed of simulated drivers.
	SimulatedSpeedKph = 40.0

	// DepotGeofenceKm is the radius around the depot inside which a driver is "at base".
	DepotGeofenceKm = 0.1

	// DefaultTickInterval is the simulation period and the elapsed time assumed
	// for a driver that has never moved.
	DefaultTickInterval = 2 * time.Second
)

// StepResult tells what one simulation step changed for a driver.
type StepResult struct {
	// Started is the order auto-started by this step, if any.
	Started *order.Order
	Moved   bool
}

func (r StepResult) Changed() bool {
	return r.Started != nil || r.Moved
}

// GeofenceSimulator applies the per-tick rules to one driver:
//
//  1. Auto-start: an Active driver with a confirmed route, at least one
//     Assigned order, no EnRoute order, and a known position farther than
//     DepotGeofenceKm from the depot has their first Assigned order (in route
//     sequence) moved to EnRoute.
//  2. Movement: a driver with a non-empty route and an EnRoute order moves
//     towards that order at SimulatedSpeedKph for the time elapsed since the
//     last position update, landing exactly on the target when reachable.
//
// A step that would not change the position leaves the driver untouched.
type GeofenceSimulator struct {
	sequencer    RouteSequencer
	speedKph     float64
	geofenceKm   float64
	tickInterval time.Duration
}

func NewGeofenceSimulator(tickInterval time.Duration) GeofenceSimulator {
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}
	return GeofenceSimulator{
		sequencer:    NewRouteSequencer(),
		speedKph:     SimulatedSpeedKph,
		geofenceKm:   DepotGeofenceKm,
		tickInterval: tickInterval,
	}
}

// Step mutates d and at most one of orders. orders must be the driver's own orders.
func (s GeofenceSimulator) Step(
	d *driver.Driver,
	orders []*order.Order,
	depot kernel.Location,
	now time.Time,
) (StepResult, error) {
	var result StepResult

	started, err := s.autoStart(d, orders, depot, now)
	if err != nil {
		return StepResult{}, err
	}
	result.Started = started

	moved, err := s.move(d, orders, depot, now)
	if err != nil {
		return StepResult{}, err
	}
	result.Moved = moved

	return result, nil
}

func (s GeofenceSimulator) autoStart(
	d *driver.Driver,
	orders []*order.Order,
	depot kernel.Location,
	now time.Time,
) (*order.Order, error) {
	if !d.IsActive() || !d.RouteConfirmed() {
		return nil, nil
	}
	if s.sequencer.CurrentEnRoute(orders) != nil {
		return nil, nil
	}
	position, ok := d.Position()
	if !ok || depot.DistanceTo(position) <= s.geofenceKm {
		return nil, nil
	}

	next := s.sequencer.NextAssigned(orders, d.Route())
	if next == nil {
		return nil, nil
	}
	if err := next.StartRoute(now); err != nil {
		return nil, err
	}
	return next, nil
}

func (s GeofenceSimulator) move(
	d *driver.Driver,
	orders []*order.Order,
	depot kernel.Location,
	now time.Time,
) (bool, error) {
	if !d.HasRoute() {
		return false, nil
	}
	current := s.sequencer.CurrentEnRoute(orders)
	if current == nil {
		return false, nil
	}
	target, ok := current.Location()
	if !ok {
		return false, nil
	}

	from, ok := d.Position()
	if !ok {
		from = depot.Position()
	}

	elapsed := s.tickInterval
	if last, ok := d.LastLocationUpdate(); ok {
		elapsed = max(now.Sub(last), 0)
	}

	next := from.StepTowards(target.Position(), s.speedKph*elapsed.Hours())
	return d.UpdatePosition(next, now)
}

package services

import (
	"fmt"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
)

const (
	// DeliveryGeofenceKm is the maximum distance from the order at which a
	// delivery can be confirmed.
	DeliveryGeofenceKm = 0.5

	// StaleDeliveryWindow is the order age after which a delivery needs an
	// explicit decision.
	StaleDeliveryWindow = 2 * time.Hour
)

// GeofenceKind names the violated geofence.
type GeofenceKind string

const (
	GeofenceTooFar    GeofenceKind = "too_far"
	GeofenceNotAtBase GeofenceKind = "not_at_base"
)

// GeofenceViolationError reports a position outside an allowed radius.
// Distance and Limit are in kilometers.
type GeofenceViolationError struct {
	Kind     GeofenceKind
	Distance float64
	Limit    float64
}

func (e *GeofenceViolationError) Error() string {
	return fmt.Sprintf("geofence violation %s: %.0f m away, limit %.0f m",
		e.Kind, e.Distance*1000, e.Limit*1000)
}

// DistanceMeters is the measured distance rounded to whole meters.
func (e *GeofenceViolationError) DistanceMeters() int {
	return int(e.Distance*1000 + 0.5)
}

// DeliveryPolicy holds the geofence and time rules of the delivery workflow.
// Boundaries are inclusive: exactly at the limit is allowed.
type DeliveryPolicy struct {
	deliveryRadiusKm float64
	depotRadiusKm    float64
	staleWindow      time.Duration
}

func NewDeliveryPolicy() DeliveryPolicy {
	return DeliveryPolicy{
		deliveryRadiusKm: DeliveryGeofenceKm,
		depotRadiusKm:    DepotGeofenceKm,
		staleWindow:      StaleDeliveryWindow,
	}
}

func (p DeliveryPolicy) CheckDeliveryDistance(sample kernel.Position, target kernel.Location) error {
	if d := target.DistanceTo(sample); d > p.deliveryRadiusKm {
		return &GeofenceViolationError{Kind: GeofenceTooFar, Distance: d, Limit: p.deliveryRadiusKm}
	}
	return nil
}

func (p DeliveryPolicy) CheckAtDepot(sample kernel.Position, depot kernel.Location) error {
	if d := depot.DistanceTo(sample); d > p.depotRadiusKm {
		return &GeofenceViolationError{Kind: GeofenceNotAtBase, Distance: d, Limit: p.depotRadiusKm}
	}
	return nil
}

// IsStale reports whether more than the stale window has passed since creation.
func (p DeliveryPolicy) IsStale(o *order.Order, now time.Time) (time.Duration, bool) {
	age := o.Age(now)
	return age, age > p.staleWindow
}

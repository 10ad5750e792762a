package ports

import (
	"context"
	"errors"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/route"
)

var (
	// ErrNotConfigured is returned by adapters whose credentials are missing.
	ErrNotConfigured = errors.New("external service is not configured")

	// ErrPositionUnavailable is returned when no fresh position sample exists.
	ErrPositionUnavailable = errors.New("position unavailable")

	// ErrDraftNotFound is returned by RouteDraftStore.Get for unknown drivers.
	ErrDraftNotFound = errors.New("route draft not found")
)

// GeocodeResult is the answer for one address lookup. A lookup that reached
// the provider but found nothing usable has Valid=false and a Warning.
type GeocodeResult struct {
	Valid            bool
	FormattedAddress string
	Lat              float64
	Lng              float64
	Locality         string
	Warning          string
}

// Geocoder turns a free-text address into coordinates.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (GeocodeResult, error)
}

// WaypointOptimizer returns a permutation of waypoint indices for the
// shortest round trip origin -> waypoints -> destination.
type WaypointOptimizer interface {
	OptimizeWaypoints(
		ctx context.Context,
		origin, destination kernel.Position,
		waypoints []kernel.Position,
	) ([]int, error)
}

// PositionSampler returns the most recent position for a driver or an error
// wrapping ErrPositionUnavailable.
type PositionSampler interface {
	CurrentPosition(ctx context.Context, driverID kernel.UUID) (kernel.Position, error)
}

// Proof is a captured proof-of-delivery payload, typically a photo.
type Proof struct {
	Data        []byte
	ContentType string
}

// ProofStore persists proofs and returns an opaque reference.
type ProofStore interface {
	Save(ctx context.Context, orderID kernel.UUID, proof Proof, capturedAt time.Time) (string, error)
}

// RouteDraftStore keeps operators' unconfirmed route edits. Drafts live
// outside the unit of work and never affect driver state.
type RouteDraftStore interface {
	Get(ctx context.Context, driverID kernel.UUID) (*route.Draft, error)
	Save(ctx context.Context, draft *route.Draft) error
	Delete(ctx context.Context, driverID kernel.UUID) error
}

// EventPublisher delivers committed domain events to interested parties.
type EventPublisher interface {
	Publish(ctx context.Context, events []kernel.DomainEvent) error
}

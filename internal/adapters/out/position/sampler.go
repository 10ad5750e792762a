// Package position resolves a driver's current position for the delivery and
// finish-shift checks.
package position

import (
	"context"
	"fmt"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
)

type contextKey struct{}

// WithPosition attaches a position reported by the driver's device with the
// request itself.
func WithPosition(ctx context.Context, p kernel.Position) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the position attached by WithPosition.
func FromContext(ctx context.Context) (kernel.Position, bool) {
	p, ok := ctx.Value(contextKey{}).(kernel.Position)
	return p, ok
}

// Sampler implements ports.PositionSampler. A position attached to the
// context wins; otherwise the fallback sampler (device telemetry) is asked.
type Sampler struct {
	fallback ports.PositionSampler
}

// NewSampler accepts a nil fallback.
func NewSampler(fallback ports.PositionSampler) *Sampler {
	return &Sampler{fallback: fallback}
}

func (s *Sampler) CurrentPosition(ctx context.Context, driverID kernel.UUID) (kernel.Position, error) {
	if p, ok := FromContext(ctx); ok {
		if err := p.Validate(); err != nil {
			return kernel.Position{}, fmt.Errorf("%w: %w", ports.ErrPositionUnavailable, err)
		}
		return p, nil
	}
	if s.fallback == nil {
		return kernel.Position{}, fmt.Errorf("%w: no position reported for driver %s", ports.ErrPositionUnavailable, driverID)
	}
	return s.fallback.CurrentPosition(ctx, driverID)
}

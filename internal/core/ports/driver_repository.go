package ports

import (
	"context"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
)

// DriverRepository defines the persistence contract for driver aggregates,
// including their route and simulated position.
type DriverRepository interface {
	Add(ctx context.Context, aggregate *driver.Driver) error
	Update(ctx context.Context, aggregate *driver.Driver) error

	// Get returns errs.ObjectNotFoundError when the id is unknown.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)

	// GetAll returns drivers in creation order.
	GetAll(ctx context.Context) ([]*driver.Driver, error)

	// GetAllActive returns the drivers currently on shift.
	GetAllActive(ctx context.Context) ([]*driver.Driver, error)
}

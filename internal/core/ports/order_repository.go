package ports

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
// List methods return orders in creation order.
type OrderRepository interface {
	// Add persists a new order. The id must not exist yet.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order.
	Update(ctx context.Context, aggregate *order.Order) error

	// Delete removes an order. Callers check deletability first.
	Delete(ctx context.Context, id kernel.UUID) error

	// Get returns errs.ObjectNotFoundError when the id is unknown.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	GetAll(ctx context.Context) ([]*order.Order, error)

	GetByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)

	// GetByDriver returns every order assigned to the driver, in any status.
	GetByDriver(ctx context.Context, driverID kernel.UUID) ([]*order.Order, error)
}

package memory

import (
	"context"
	"log/slog"
	"slices"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/ports"

	"golang.org/x/sync/semaphore"
)

type state struct {
	drivers   map[kernel.UUID]driver.Snapshot
	driverIDs []kernel.UUID
	orders    map[kernel.UUID]order.Snapshot
	orderIDs  []kernel.UUID
	incidents []*incident.Incident
	depot     *kernel.Location
}

func newState() *state {
	return &state{
		drivers: make(map[kernel.UUID]driver.Snapshot),
		orders:  make(map[kernel.UUID]order.Snapshot),
	}
}

// clone copies the indexes. Snapshots are values and incidents are
// immutable, so they are shared.
func (s *state) clone() *state {
	c := &state{
		drivers:   make(map[kernel.UUID]driver.Snapshot, len(s.drivers)),
		driverIDs: slices.Clone(s.driverIDs),
		orders:    make(map[kernel.UUID]order.Snapshot, len(s.orders)),
		orderIDs:  slices.Clone(s.orderIDs),
		incidents: slices.Clone(s.incidents),
	}
	for id, snap := range s.drivers {
		c.drivers[id] = snap
	}
	for id, snap := range s.orders {
		c.orders[id] = snap
	}
	if s.depot != nil {
		depot := *s.depot
		c.depot = &depot
	}
	return c
}

// Store holds the committed state and the writer lock.
type Store struct {
	writer    *semaphore.Weighted
	committed *state
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewStore creates an empty store. The publisher may be nil.
func NewStore(publisher ports.EventPublisher, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		writer:    semaphore.NewWeighted(1),
		committed: newState(),
		publisher: publisher,
		logger:    logger.With("component", "memory-store"),
	}
}

// Create implements ports.UnitOfWorkFactory.
func (s *Store) Create() ports.UnitOfWork {
	return &UnitOfWork{store: s}
}

func (s *Store) publish(ctx context.Context, events []kernel.DomainEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish domain events", "error", err, "count", len(events))
	}
}

// Package postgres provides the GORM-based unit of work for the dispatch core.
//
// A unit of work is one database transaction spanning the driver, order,
// incident and settings repositories. Writers are serialized twice: by a
// process-wide semaphore shared by every unit of work created from the same
// factory, and by a transaction-scoped advisory lock so that several
// processes pointed at the same database also take turns.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, publisher, logger)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.OrderRepository().Add(ctx, order); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Domain events recorded by aggregates passed to Add or Update are published
// once the transaction commits. A rolled back unit of work publishes nothing.
package postgres

import (
	"context"
	"log/slog"

	"lastmile/internal/adapters/out/postgres/driverrepo"
	"lastmile/internal/adapters/out/postgres/incidentrepo"
	"lastmile/internal/adapters/out/postgres/orderrepo"
	"lastmile/internal/adapters/out/postgres/settingsrepo"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"

	"golang.org/x/sync/semaphore"
	"gorm.io/gorm"
)

// dispatchLockKey identifies the advisory lock held by writers.
const dispatchLockKey int64 = 0x6c6d_6469_7370

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection
// pool and one writer lock.
type GormUnitOfWorkFactory struct {
	db         *gorm.DB
	writer     *semaphore.Weighted
	publisher  ports.EventPublisher
	logger     *slog.Logger
	lockGlobal bool
}

// NewGormUnitOfWorkFactory creates a factory. The publisher may be nil.
func NewGormUnitOfWorkFactory(db *gorm.DB, publisher ports.EventPublisher, logger *slog.Logger) *GormUnitOfWorkFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormUnitOfWorkFactory{
		db:         db,
		writer:     semaphore.NewWeighted(1),
		publisher:  publisher,
		logger:     logger.With("component", "postgres-uow"),
		lockGlobal: true,
	}
}

// Create produces a new UnitOfWork with its own transaction state and
// aggregate tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		factory:           f,
		db:                f.db,
		trackedAggregates: make([]kernel.Aggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and the aggregates
// touched during it.
type GormUnitOfWork struct {
	factory           *GormUnitOfWorkFactory
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []kernel.Aggregate
}

// Begin waits for the writer lock and opens a transaction. Calling Begin on
// an active unit of work is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	if err := uow.factory.writer.Acquire(ctx, 1); err != nil {
		return err
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		uow.factory.writer.Release(1)
		return tx.Error
	}

	if uow.factory.lockGlobal {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", dispatchLockKey).Error; err != nil {
			tx.Rollback()
			uow.factory.writer.Release(1)
			return err
		}
	}

	uow.tx = tx
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit makes the changes permanent, releases the writer lock and then
// publishes the collected domain events.
func (uow *GormUnitOfWork) Commit(ctx context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	uow.factory.writer.Release(1)
	if err != nil {
		uow.trackedAggregates = uow.trackedAggregates[:0]
		return err
	}

	uow.publish(ctx, uow.collectEvents())
	return nil
}

// Rollback discards the transaction. It returns gorm.ErrInvalidTransaction
// when nothing is active, so deferring it after Commit is harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	uow.factory.writer.Release(1)
	return err
}

func (uow *GormUnitOfWork) DriverRepository() ports.DriverRepository {
	return driverrepo.NewGormDriverRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) IncidentRepository() ports.IncidentRepository {
	return incidentrepo.NewGormIncidentRepository(uow.conn())
}

func (uow *GormUnitOfWork) SettingsRepository() ports.SettingsRepository {
	return settingsrepo.NewGormSettingsRepository(uow.conn())
}

// TrackAggregate registers an aggregate whose events are published after
// commit. Repositories call it on Add and Update.
func (uow *GormUnitOfWork) TrackAggregate(aggregate kernel.Aggregate) {
	uow.trackedAggregates = append(uow.trackedAggregates, aggregate)
}

// conn returns the transaction when one is active, otherwise the pool.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) collectEvents() []kernel.DomainEvent {
	var events []kernel.DomainEvent
	for _, aggregate := range uow.trackedAggregates {
		events = append(events, aggregate.DomainEvents()...)
		aggregate.ClearDomainEvents()
	}
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return events
}

func (uow *GormUnitOfWork) publish(ctx context.Context, events []kernel.DomainEvent) {
	if uow.factory.publisher == nil || len(events) == 0 {
		return
	}
	if err := uow.factory.publisher.Publish(ctx, events); err != nil {
		uow.factory.logger.ErrorContext(ctx, "failed to publish domain events", "error", err, "count", len(events))
	}
}

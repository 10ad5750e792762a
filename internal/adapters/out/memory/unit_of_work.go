package memory

import (
	"context"
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"
)

var ErrNoActiveTransaction = errors.New("no active transaction")

// UnitOfWork is one transaction against a Store.
type UnitOfWork struct {
	store   *Store
	working *state
	tracked []kernel.Aggregate
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.working != nil {
		return nil
	}
	if err := u.store.writer.Acquire(ctx, 1); err != nil {
		return err
	}
	u.working = u.store.committed.clone()
	u.tracked = nil
	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.working == nil {
		return ErrNoActiveTransaction
	}

	u.store.committed = u.working
	events := u.collectEvents()
	u.working = nil
	u.store.writer.Release(1)

	u.store.publish(ctx, events)
	return nil
}

func (u *UnitOfWork) Rollback(_ context.Context) error {
	if u.working == nil {
		return ErrNoActiveTransaction
	}
	u.working = nil
	u.tracked = nil
	u.store.writer.Release(1)
	return nil
}

func (u *UnitOfWork) DriverRepository() ports.DriverRepository {
	return &driverRepository{uow: u}
}

func (u *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &orderRepository{uow: u}
}

func (u *UnitOfWork) IncidentRepository() ports.IncidentRepository {
	return &incidentRepository{uow: u}
}

func (u *UnitOfWork) SettingsRepository() ports.SettingsRepository {
	return &settingsRepository{uow: u}
}

func (u *UnitOfWork) state() (*state, error) {
	if u.working == nil {
		return nil, ErrNoActiveTransaction
	}
	return u.working, nil
}

func (u *UnitOfWork) track(aggregate kernel.Aggregate) {
	u.tracked = append(u.tracked, aggregate)
}

func (u *UnitOfWork) collectEvents() []kernel.DomainEvent {
	var events []kernel.DomainEvent
	for _, aggregate := range u.tracked {
		events = append(events, aggregate.DomainEvents()...)
		aggregate.ClearDomainEvents()
	}
	u.tracked = nil
	return events
}

package ports

import (
	"context"
)

// UnitOfWorkFactory creates a new UnitOfWork per command or query.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is the transaction boundary of the dispatch core.
//
// Implementations serialize writers: Begin blocks until no other unit of work
// is open and the lock is held until Commit or Rollback. Domain events of the
// aggregates touched through the repositories are published only after a
// successful Commit. Callers must not perform network I/O between Begin and
// Commit/Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit returns an error if no transaction is active.
	Commit(ctx context.Context) error

	// Rollback returns an error if no transaction is active; it is safe to
	// defer after Commit.
	Rollback(ctx context.Context) error

	DriverRepository() DriverRepository
	OrderRepository() OrderRepository
	IncidentRepository() IncidentRepository
	SettingsRepository() SettingsRepository
}

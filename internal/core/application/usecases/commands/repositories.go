// Package commands contains the operations that modify dispatch state.
// Every command is a validated value created through its constructor and is
// executed by one handler following the same shape: validate, do any network
// work, then open a unit of work, load, mutate through the domain model,
// persist, and commit.
package commands

import (
	"context"

	"lastmile/internal/core/ports"
)

// Unit of work views used by the handlers. Narrow views keep each handler's
// dependencies explicit.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	IncidentRepoFactory interface {
		IncidentRepository() ports.IncidentRepository
	}

	SettingsRepoFactory interface {
		SettingsRepository() ports.SettingsRepository
	}

	// DriverUoW manages transactions that touch drivers only.
	DriverUoW interface {
		TxManager
		DriverRepoFactory
	}

	DriverUoWFactory interface {
		Create() DriverUoW
	}

	// OrderUoW manages transactions that touch orders only.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// SettingsUoW manages transactions that touch operator settings.
	SettingsUoW interface {
		TxManager
		SettingsRepoFactory
	}

	SettingsUoWFactory interface {
		Create() SettingsUoW
	}

	// UoW spans every aggregate.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   driverRepo := uow.DriverRepository()
	//   orderRepo := uow.OrderRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		DriverRepoFactory
		OrderRepoFactory
		IncidentRepoFactory
		SettingsRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)

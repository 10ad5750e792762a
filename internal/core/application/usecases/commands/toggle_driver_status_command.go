package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrToggleDriverStatusCommandIsNotConstructed = errors.New(
	"ToggleDriverStatusCommand must be created via NewToggleDriverStatusCommand constructor",
)

// ToggleDriverStatusCommand switches a driver between Active and Inactive.
type ToggleDriverStatusCommand struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

func NewToggleDriverStatusCommand(driverID kernel.UUID) (ToggleDriverStatusCommand, error) {
	if err := driverID.Validate(); err != nil {
		return ToggleDriverStatusCommand{}, err
	}
	return ToggleDriverStatusCommand{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

func (c ToggleDriverStatusCommand) Validate() error {
	return c.guard.Validate(ErrToggleDriverStatusCommandIsNotConstructed)
}

func (c ToggleDriverStatusCommand) DriverID() kernel.UUID {
	return c.driverID
}

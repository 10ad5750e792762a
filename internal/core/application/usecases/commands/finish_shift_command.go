package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrFinishShiftCommandIsNotConstructed = errors.New(
	"FinishShiftCommand must be created via NewFinishShiftCommand constructor",
)

// FinishShiftCommand ends a driver's shift at the depot.
type FinishShiftCommand struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

func NewFinishShiftCommand(driverID kernel.UUID) (FinishShiftCommand, error) {
	if err := driverID.Validate(); err != nil {
		return FinishShiftCommand{}, err
	}
	return FinishShiftCommand{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

func (c FinishShiftCommand) Validate() error {
	return c.guard.Validate(ErrFinishShiftCommandIsNotConstructed)
}

func (c FinishShiftCommand) DriverID() kernel.UUID {
	return c.driverID
}

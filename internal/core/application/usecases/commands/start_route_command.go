package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrStartRouteCommandIsNotConstructed = errors.New(
	"StartRouteCommand must be created via NewStartRouteCommand constructor",
)

// StartRouteCommand manually starts the driver's first Assigned order.
type StartRouteCommand struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

func NewStartRouteCommand(driverID kernel.UUID) (StartRouteCommand, error) {
	if err := driverID.Validate(); err != nil {
		return StartRouteCommand{}, err
	}
	return StartRouteCommand{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

func (c StartRouteCommand) Validate() error {
	return c.guard.Validate(ErrStartRouteCommandIsNotConstructed)
}

func (c StartRouteCommand) DriverID() kernel.UUID {
	return c.driverID
}

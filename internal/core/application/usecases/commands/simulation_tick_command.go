package commands

import (
	"errors"

	"lastmile/internal/pkg/guard"
)

var ErrSimulationTickCommandIsNotConstructed = errors.New(
	"SimulationTickCommand must be created via NewSimulationTickCommand constructor",
)

// SimulationTickCommand runs one pass of the geofence and movement rules over
// every active driver.
type SimulationTickCommand struct {
	guard guard.ConstructorGuard
}

func NewSimulationTickCommand() SimulationTickCommand {
	return SimulationTickCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c SimulationTickCommand) Validate() error {
	return c.guard.Validate(ErrSimulationTickCommandIsNotConstructed)
}

package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/guard"
)

var ErrRouteDraftCommandIsNotConstructed = errors.New(
	"route draft commands must be created via their constructors",
)

// RouteDraftCommand addresses the route draft of one driver. It is used as is
// for open, optimize, confirm and discard.
type RouteDraftCommand struct {
	driverID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRouteDraftCommand(driverID kernel.UUID) (RouteDraftCommand, error) {
	if err := driverID.Validate(); err != nil {
		return RouteDraftCommand{}, err
	}
	return RouteDraftCommand{driverID: driverID, guard: guard.NewConstructorGuard()}, nil
}

func (c RouteDraftCommand) Validate() error {
	return c.guard.Validate(ErrRouteDraftCommandIsNotConstructed)
}

func (c RouteDraftCommand) DriverID() kernel.UUID {
	return c.driverID
}

// MoveRouteDraftStopCommand swaps one stop with its neighbour.
type MoveRouteDraftStopCommand struct {
	RouteDraftCommand

	index     int
	direction route.Direction
}

func NewMoveRouteDraftStopCommand(
	driverID kernel.UUID,
	index int,
	direction route.Direction,
) (MoveRouteDraftStopCommand, error) {
	base, err := NewRouteDraftCommand(driverID)
	var indexErr error
	if index < 0 {
		indexErr = route.ErrIndexOutOfRange
	}
	_, dirErr := route.ParseDirection(string(direction))

	if err = errors.Join(err, indexErr, dirErr); err != nil {
		return MoveRouteDraftStopCommand{}, err
	}
	return MoveRouteDraftStopCommand{RouteDraftCommand: base, index: index, direction: direction}, nil
}

func (c MoveRouteDraftStopCommand) Index() int {
	return c.index
}

func (c MoveRouteDraftStopCommand) Direction() route.Direction {
	return c.direction
}

// SetRouteDraftPriorityCommand changes one stop's priority inside the draft.
type SetRouteDraftPriorityCommand struct {
	RouteDraftCommand

	orderID  kernel.UUID
	priority order.Priority
}

func NewSetRouteDraftPriorityCommand(
	driverID, orderID kernel.UUID,
	priority order.Priority,
) (SetRouteDraftPriorityCommand, error) {
	base, err := NewRouteDraftCommand(driverID)
	if err = errors.Join(err, orderID.Validate(), priority.Validate()); err != nil {
		return SetRouteDraftPriorityCommand{}, err
	}
	return SetRouteDraftPriorityCommand{RouteDraftCommand: base, orderID: orderID, priority: priority}, nil
}

func (c SetRouteDraftPriorityCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c SetRouteDraftPriorityCommand) Priority() order.Priority {
	return c.priority
}

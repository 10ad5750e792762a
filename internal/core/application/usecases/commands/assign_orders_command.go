package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrAssignOrdersCommandIsNotConstructed = errors.New(
	"AssignOrdersCommand must be created via NewAssignOrdersCommand constructor",
)

// AssignOrdersCommand hands a batch of pending orders to one driver and
// recomputes that driver's route.
type AssignOrdersCommand struct { //nolint:recvcheck //using for validation
	driverID kernel.UUID
	orderIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignOrdersCommand(driverID kernel.UUID, orderIDs []kernel.UUID) (AssignOrdersCommand, error) {
	command := AssignOrdersCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setDriverID(driverID),
		command.setOrderIDs(orderIDs),
	); err != nil {
		return AssignOrdersCommand{}, err
	}

	return command, nil
}

func (c AssignOrdersCommand) Validate() error {
	return c.guard.Validate(ErrAssignOrdersCommandIsNotConstructed)
}

func (c AssignOrdersCommand) DriverID() kernel.UUID {
	return c.driverID
}

// OrderIDs returns the selection in the operator's order.
func (c AssignOrdersCommand) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(c.orderIDs))
	copy(ids, c.orderIDs)
	return ids
}

func (c *AssignOrdersCommand) setDriverID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.driverID = id
	return nil
}

func (c *AssignOrdersCommand) setOrderIDs(ids []kernel.UUID) error {
	if len(ids) == 0 {
		return ErrOrderIDsAreRequired
	}
	seen := make(map[kernel.UUID]struct{}, len(ids))
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return err
		}
		if _, dup := seen[id]; dup {
			return ErrOrderIDsAreDuplicated
		}
		seen[id] = struct{}{}
	}
	c.orderIDs = ids
	return nil
}

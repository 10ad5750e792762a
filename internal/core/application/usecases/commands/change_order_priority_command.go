package commands

import (
	"errors"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/guard"
)

var ErrChangeOrderPriorityCommandIsNotConstructed = errors.New(
	"ChangeOrderPriorityCommand must be created via NewChangeOrderPriorityCommand constructor",
)

type ChangeOrderPriorityCommand struct {
	orderID  kernel.UUID
	priority order.Priority

	guard guard.ConstructorGuard
}

func NewChangeOrderPriorityCommand(orderID kernel.UUID, priority order.Priority) (ChangeOrderPriorityCommand, error) {
	if err := errors.Join(orderID.Validate(), priority.Validate()); err != nil {
		return ChangeOrderPriorityCommand{}, err
	}
	return ChangeOrderPriorityCommand{
		orderID:  orderID,
		priority: priority,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c ChangeOrderPriorityCommand) Validate() error {
	return c.guard.Validate(ErrChangeOrderPriorityCommandIsNotConstructed)
}

func (c ChangeOrderPriorityCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c ChangeOrderPriorityCommand) Priority() order.Priority {
	return c.priority
}

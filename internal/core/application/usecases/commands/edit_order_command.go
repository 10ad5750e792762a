package commands

import (
	"errors"
	"strings"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/pkg/guard"
)

var ErrEditOrderCommandIsNotConstructed = errors.New(
	"EditOrderCommand must be created via NewEditOrderCommand constructor",
)

// EditOrderCommand changes customer data of a pending order. An empty
// address keeps the current location.
type EditOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	customer string
	address  string
	notes    string

	guard guard.ConstructorGuard
}

func NewEditOrderCommand(orderID kernel.UUID, customer, address, notes string) (EditOrderCommand, error) {
	command := EditOrderCommand{
		address: strings.TrimSpace(address),
		notes:   strings.TrimSpace(notes),
		guard:   guard.NewConstructorGuard(),
	}

	var customerErr error
	command.customer = strings.TrimSpace(customer)
	if command.customer == "" {
		customerErr = ErrCustomerIsRequired
	}

	if err := errors.Join(orderID.Validate(), customerErr); err != nil {
		return EditOrderCommand{}, err
	}
	command.orderID = orderID

	return command, nil
}

func (c EditOrderCommand) Validate() error {
	return c.guard.Validate(ErrEditOrderCommandIsNotConstructed)
}

func (c EditOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

func (c EditOrderCommand) Customer() string {
	return c.customer
}

func (c EditOrderCommand) Address() string {
	return c.address
}

func (c EditOrderCommand) Notes() string {
	return c.notes
}

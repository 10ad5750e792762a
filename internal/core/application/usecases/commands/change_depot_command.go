package commands

import (
	"errors"
	"strings"

	"lastmile/internal/pkg/guard"
)

var ErrChangeDepotCommandIsNotConstructed = errors.New(
	"ChangeDepotCommand must be created via NewChangeDepotCommand constructor",
)

// ChangeDepotCommand moves the depot to a new address.
type ChangeDepotCommand struct {
	address string

	guard guard.ConstructorGuard
}

func NewChangeDepotCommand(address string) (ChangeDepotCommand, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return ChangeDepotCommand{}, ErrAddressIsRequired
	}
	return ChangeDepotCommand{address: address, guard: guard.NewConstructorGuard()}, nil
}

func (c ChangeDepotCommand) Validate() error {
	return c.guard.Validate(ErrChangeDepotCommandIsNotConstructed)
}

func (c ChangeDepotCommand) Address() string {
	return c.address
}

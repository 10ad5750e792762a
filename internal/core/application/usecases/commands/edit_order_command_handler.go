package commands

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"
)

type EditOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	resolver   services.AddressResolver
}

func NewEditOrderCommandHandler(uowFactory OrderUoWFactory, resolver services.AddressResolver) EditOrderCommandHandler {
	return EditOrderCommandHandler{uowFactory: uowFactory, resolver: resolver}
}

// Handle geocodes a new address before opening the unit of work.
func (h *EditOrderCommandHandler) Handle(ctx context.Context, cmd EditOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	var resolved *kernel.Location
	if cmd.Address() != "" {
		location, err := h.resolver.Resolve(ctx, cmd.Address())
		if err != nil {
			return err
		}
		resolved = &location
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()
	o, err := repo.Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}

	location, ok := o.Location()
	switch {
	case resolved != nil:
		location = *resolved
	case !ok:
		return ErrAddressIsRequired
	}

	if err = o.Edit(cmd.Customer(), cmd.Notes(), location); err != nil {
		return err
	}
	if err = repo.Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

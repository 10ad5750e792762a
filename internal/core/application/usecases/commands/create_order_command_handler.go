package commands

import (
	"context"

	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/services"

	"github.com/facebookgo/clock"
)

// CreateOrderCommandHandler resolves the address outside the unit of work and
// stores the order only when the geocoder accepted it.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	resolver   services.AddressResolver
	clock      clock.Clock
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	resolver services.AddressResolver,
	clk clock.Clock,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		resolver:   resolver,
		clock:      clk,
	}
}

// Handle returns *services.AddressRejectedError when the address cannot be used.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	location, err := h.resolver.Resolve(ctx, cmd.Address())
	if err != nil {
		return err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Customer(), cmd.Notes(), location, cmd.Priority(), h.clock.Now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

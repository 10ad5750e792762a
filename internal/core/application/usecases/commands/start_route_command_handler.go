package commands

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/services"

	"github.com/facebookgo/clock"
)

type StartRouteCommandHandler struct {
	uowFactory UoWFactory
	sequencer  services.RouteSequencer
	clock      clock.Clock
}

func NewStartRouteCommandHandler(uowFactory UoWFactory, clk clock.Clock) StartRouteCommandHandler {
	return StartRouteCommandHandler{
		uowFactory: uowFactory,
		sequencer:  services.NewRouteSequencer(),
		clock:      clk,
	}
}

// Handle returns the id of the order now EnRoute.
func (h *StartRouteCommandHandler) Handle(ctx context.Context, cmd StartRouteCommand) (kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DriverRepository().Get(ctx, cmd.DriverID())
	if err != nil {
		return kernel.UUID{}, err
	}
	if err = d.ValidateActive(); err != nil {
		return kernel.UUID{}, err
	}

	orderRepo := uow.OrderRepository()
	orders, err := orderRepo.GetByDriver(ctx, d.ID())
	if err != nil {
		return kernel.UUID{}, err
	}
	if h.sequencer.CurrentEnRoute(orders) != nil {
		return kernel.UUID{}, ErrRouteAlreadyStarted
	}

	next := h.sequencer.NextAssigned(orders, d.Route())
	if next == nil {
		return kernel.UUID{}, ErrNoAssignedOrders
	}
	if err = next.StartRoute(h.clock.Now()); err != nil {
		return kernel.UUID{}, err
	}
	if err = orderRepo.Update(ctx, next); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}
	return next.ID(), nil
}

package commands

import (
	"context"

	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/metrics"

	"github.com/facebookgo/clock"
)

// FinishShiftCommandHandler clears the route of a driver who is back within
// services.DepotGeofenceKm of the depot. Undelivered orders keep their status.
type FinishShiftCommandHandler struct {
	uowFactory UoWFactory
	sampler    ports.PositionSampler
	policy     services.DeliveryPolicy
	clock      clock.Clock
}

func NewFinishShiftCommandHandler(
	uowFactory UoWFactory,
	sampler ports.PositionSampler,
	clk clock.Clock,
) FinishShiftCommandHandler {
	return FinishShiftCommandHandler{
		uowFactory: uowFactory,
		sampler:    sampler,
		policy:     services.NewDeliveryPolicy(),
		clock:      clk,
	}
}

func (h *FinishShiftCommandHandler) Handle(ctx context.Context, cmd FinishShiftCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	sample, err := h.sampler.CurrentPosition(ctx, cmd.DriverID())
	if err != nil {
		return &PositionUnavailableError{DriverID: cmd.DriverID(), Cause: err}
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	driverRepo := uow.DriverRepository()
	d, err := driverRepo.Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}

	depot, err := uow.SettingsRepository().GetDepot(ctx)
	if err != nil {
		return err
	}

	if err = h.policy.CheckAtDepot(sample, depot); err != nil {
		metrics.GeofenceRejections.WithLabelValues(string(services.GeofenceNotAtBase)).Inc()
		return err
	}

	d.ClearRoute(h.clock.Now())
	if err = driverRepo.Update(ctx, d); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

package commands

import (
	"context"

	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/order"

	"github.com/facebookgo/clock"
)

// ReportIncidentCommandHandler records where the driver was when the problem
// was reported, falling back to the depot when the position is unknown.
type ReportIncidentCommandHandler struct {
	uowFactory UoWFactory
	clock      clock.Clock
}

func NewReportIncidentCommandHandler(uowFactory UoWFactory, clk clock.Clock) ReportIncidentCommandHandler {
	return ReportIncidentCommandHandler{uowFactory: uowFactory, clock: clk}
}

func (h *ReportIncidentCommandHandler) Handle(ctx context.Context, cmd ReportIncidentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if !o.IsAssignedTo(cmd.DriverID()) {
		return ErrOrderNotOfDriver
	}
	if o.Status() != order.EnRoute {
		return ErrOrderNotEnRoute
	}

	d, err := uow.DriverRepository().Get(ctx, cmd.DriverID())
	if err != nil {
		return err
	}

	location, ok := d.Position()
	if !ok {
		depot, depotErr := uow.SettingsRepository().GetDepot(ctx)
		if depotErr != nil {
			return depotErr
		}
		location = depot.Position()
	}

	record, err := incident.NewIncident(
		cmd.IncidentID(), o.ID(), d.ID(), incident.Manual, cmd.Reason(), h.clock.Now(), location,
	)
	if err != nil {
		return err
	}
	if err = uow.IncidentRepository().Add(ctx, record); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

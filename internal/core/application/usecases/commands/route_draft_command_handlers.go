package commands

import (
	"context"
	"fmt"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
	"lastmile/internal/metrics"

	"github.com/facebookgo/clock"
)

// RouteDraftHandlers implement the operator's route editing screen. A draft
// is a scratch list kept in a ports.RouteDraftStore; only Confirm touches the
// driver and their orders.
type RouteDraftHandlers struct {
	uowFactory UoWFactory
	drafts     ports.RouteDraftStore
	optimizer  services.RouteOptimizer
	dispatcher services.OrderDispatcher
	sequencer  services.RouteSequencer
	clock      clock.Clock
}

func NewRouteDraftHandlers(
	uowFactory UoWFactory,
	drafts ports.RouteDraftStore,
	optimizer services.RouteOptimizer,
	clk clock.Clock,
) RouteDraftHandlers {
	return RouteDraftHandlers{
		uowFactory: uowFactory,
		drafts:     drafts,
		optimizer:  optimizer,
		dispatcher: services.NewOrderDispatcher(),
		sequencer:  services.NewRouteSequencer(),
		clock:      clk,
	}
}

// Open starts a draft from the driver's Assigned orders in current route
// sequence, replacing any previous draft.
func (h *RouteDraftHandlers) Open(ctx context.Context, cmd RouteDraftCommand) (*route.Draft, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	stops, err := h.currentStops(ctx, cmd.DriverID())
	if err != nil {
		return nil, err
	}
	if len(stops) == 0 {
		return nil, ErrNoAssignedOrders
	}

	draft, err := route.NewDraft(cmd.DriverID(), stops)
	if err != nil {
		return nil, err
	}
	if err = h.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (h *RouteDraftHandlers) Get(ctx context.Context, cmd RouteDraftCommand) (*route.Draft, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.drafts.Get(ctx, cmd.DriverID())
}

func (h *RouteDraftHandlers) Move(ctx context.Context, cmd MoveRouteDraftStopCommand) (*route.Draft, error) {
	return h.edit(ctx, cmd.RouteDraftCommand, func(d *route.Draft) error {
		return d.Move(cmd.Index(), cmd.Direction())
	})
}

func (h *RouteDraftHandlers) SetPriority(ctx context.Context, cmd SetRouteDraftPriorityCommand) (*route.Draft, error) {
	return h.edit(ctx, cmd.RouteDraftCommand, func(d *route.Draft) error {
		return d.SetPriority(cmd.OrderID(), cmd.Priority())
	})
}

// Optimize resequences the draft through the route optimizer. The external
// call happens without holding the unit of work.
func (h *RouteDraftHandlers) Optimize(ctx context.Context, cmd RouteDraftCommand) (*route.Draft, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	draft, err := h.drafts.Get(ctx, cmd.DriverID())
	if err != nil {
		return nil, err
	}

	depot, err := h.depot(ctx)
	if err != nil {
		return nil, err
	}

	result := h.optimizer.Optimize(ctx, depot, draft.Stops)
	warning := ""
	if result.Warning != nil {
		metrics.OptimizerFallbacks.WithLabelValues(result.Warning.Reason).Inc()
		warning = result.Warning.Error()
	}
	draft.Replace(result.Stops, result.Optimized, warning)

	if err = h.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Confirm overwrites the driver's route and the priorities of the draft's
// orders. Orders assigned after the draft was opened are appended; a stop
// whose order is no longer Assigned to the driver makes the draft stale.
func (h *RouteDraftHandlers) Confirm(ctx context.Context, cmd RouteDraftCommand) ([]route.Stop, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	draft, err := h.drafts.Get(ctx, cmd.DriverID())
	if err != nil {
		return nil, err
	}

	stops, err := h.confirm(ctx, draft)
	if err != nil {
		return nil, err
	}

	_ = h.drafts.Delete(ctx, cmd.DriverID())
	return stops, nil
}

func (h *RouteDraftHandlers) Discard(ctx context.Context, cmd RouteDraftCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.drafts.Delete(ctx, cmd.DriverID())
}

func (h *RouteDraftHandlers) confirm(ctx context.Context, draft *route.Draft) ([]route.Stop, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DriverRepository().Get(ctx, draft.DriverID)
	if err != nil {
		return nil, err
	}
	orderRepo := uow.OrderRepository()
	orders, err := orderRepo.GetByDriver(ctx, d.ID())
	if err != nil {
		return nil, err
	}

	assigned := make(map[kernel.UUID]*order.Order)
	var assignedInSequence []*order.Order
	for _, o := range h.sequencer.Sort(orders, d.Route()) {
		if o.Status() == order.Assigned {
			assigned[o.ID()] = o
			assignedInSequence = append(assignedInSequence, o)
		}
	}

	var changed []*order.Order
	for _, stop := range draft.Stops {
		o, ok := assigned[stop.OrderID]
		if !ok {
			return nil, fmt.Errorf("%w: order %s", ErrDraftIsStale, stop.OrderID)
		}
		if o.Priority() != stop.Priority {
			if err = o.ChangePriority(stop.Priority); err != nil {
				return nil, err
			}
			changed = append(changed, o)
		}
	}

	stops, err := h.dispatcher.MergeRoute(draft.Stops, assignedInSequence)
	if err != nil {
		return nil, err
	}
	if enRoute := h.sequencer.CurrentEnRoute(orders); enRoute != nil {
		current, stopErr := route.StopOf(enRoute)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append([]route.Stop{current}, stops...)
	}

	if err = d.ConfirmRoute(route.Locations(stops), h.clock.Now()); err != nil {
		return nil, err
	}

	for _, o := range changed {
		if err = orderRepo.Update(ctx, o); err != nil {
			return nil, err
		}
	}
	if err = uow.DriverRepository().Update(ctx, d); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return stops, nil
}

func (h *RouteDraftHandlers) edit(
	ctx context.Context,
	cmd RouteDraftCommand,
	change func(*route.Draft) error,
) (*route.Draft, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	draft, err := h.drafts.Get(ctx, cmd.DriverID())
	if err != nil {
		return nil, err
	}
	if err = change(draft); err != nil {
		return nil, err
	}
	if err = h.drafts.Save(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (h *RouteDraftHandlers) currentStops(ctx context.Context, driverID kernel.UUID) ([]route.Stop, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DriverRepository().Get(ctx, driverID)
	if err != nil {
		return nil, err
	}
	orders, err := uow.OrderRepository().GetByDriver(ctx, d.ID())
	if err != nil {
		return nil, err
	}

	return assignedStops(h.sequencer, d, orders)
}

func (h *RouteDraftHandlers) depot(ctx context.Context) (kernel.Location, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.Location{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.SettingsRepository().GetDepot(ctx)
}

func assignedStops(seq services.RouteSequencer, d *driver.Driver, orders []*order.Order) ([]route.Stop, error) {
	var stops []route.Stop
	for _, o := range seq.Sort(orders, d.Route()) {
		if o.Status() != order.Assigned {
			continue
		}
		stop, err := route.StopOf(o)
		if err != nil {
			return nil, err
		}
		stops = append(stops, stop)
	}
	return stops, nil
}

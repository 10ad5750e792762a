package commands

import (
	"context"
	"fmt"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/metrics"

	"github.com/facebookgo/clock"
)

// AssignOrdersResult describes the route stored for the driver.
type AssignOrdersResult struct {
	Stops     []route.Stop
	Optimized bool
	// Warning is set when the optimizer was not used.
	Warning *services.OptimizerFallbackError
	// OldestSelected is set when the selection's creation times are spread
	// over more than services.SelectionSpreadWindow.
	OldestSelected *kernel.UUID
}

// AssignOrdersCommandHandler runs in two locked phases around the optimizer
// call so the external request never holds the writer lock:
//
//  1. validate the driver and the selection and snapshot the stops to plan
//  2. optimize outside the unit of work, bounded by the optimizer timeout
//  3. re-validate, assign, merge the plan with the driver's current Assigned
//     orders, and store the route as confirmed
//
// If the selection changed between phases the command fails with
// ErrAssignmentConflict and nothing is stored.
type AssignOrdersCommandHandler struct {
	uowFactory UoWFactory
	optimizer  services.RouteOptimizer
	dispatcher services.OrderDispatcher
	sequencer  services.RouteSequencer
	clock      clock.Clock
}

func NewAssignOrdersCommandHandler(
	uowFactory UoWFactory,
	optimizer services.RouteOptimizer,
	clk clock.Clock,
) AssignOrdersCommandHandler {
	return AssignOrdersCommandHandler{
		uowFactory: uowFactory,
		optimizer:  optimizer,
		dispatcher: services.NewOrderDispatcher(),
		sequencer:  services.NewRouteSequencer(),
		clock:      clk,
	}
}

type assignmentPlan struct {
	depot  kernel.Location
	stops  []route.Stop
	oldest *kernel.UUID
}

func (h *AssignOrdersCommandHandler) Handle(ctx context.Context, cmd AssignOrdersCommand) (AssignOrdersResult, error) {
	if err := cmd.Validate(); err != nil {
		return AssignOrdersResult{}, err
	}

	plan, err := h.prepare(ctx, cmd)
	if err != nil {
		return AssignOrdersResult{}, err
	}

	optimized := h.optimizer.Optimize(ctx, plan.depot, plan.stops)
	if optimized.Warning != nil {
		metrics.OptimizerFallbacks.WithLabelValues(optimized.Warning.Reason).Inc()
	}

	stops, err := h.commit(ctx, cmd, optimized.Stops)
	if err != nil {
		return AssignOrdersResult{}, err
	}

	return AssignOrdersResult{
		Stops:          stops,
		Optimized:      optimized.Optimized,
		Warning:        optimized.Warning,
		OldestSelected: plan.oldest,
	}, nil
}

// prepare only reads; the deferred rollback releases the lock.
func (h *AssignOrdersCommandHandler) prepare(ctx context.Context, cmd AssignOrdersCommand) (assignmentPlan, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return assignmentPlan{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, selected, err := h.load(ctx, uow, cmd)
	if err != nil {
		return assignmentPlan{}, err
	}
	if err = h.dispatcher.Validate(d, selected); err != nil {
		return assignmentPlan{}, err
	}

	depot, err := uow.SettingsRepository().GetDepot(ctx)
	if err != nil {
		return assignmentPlan{}, err
	}

	_, assigned, err := h.driverOrders(ctx, uow, d)
	if err != nil {
		return assignmentPlan{}, err
	}

	stops := make([]route.Stop, 0, len(assigned)+len(selected))
	for _, o := range append(assigned, selected...) {
		stop, stopErr := route.StopOf(o)
		if stopErr != nil {
			return assignmentPlan{}, stopErr
		}
		stops = append(stops, stop)
	}

	plan := assignmentPlan{depot: depot, stops: stops}
	if oldest := h.dispatcher.OldestIfSpread(selected); oldest != nil {
		id := oldest.ID()
		plan.oldest = &id
	}
	return plan, nil
}

func (h *AssignOrdersCommandHandler) commit(
	ctx context.Context,
	cmd AssignOrdersCommand,
	planned []route.Stop,
) ([]route.Stop, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, selected, err := h.load(ctx, uow, cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssignmentConflict, err)
	}

	enRoute, assigned, err := h.driverOrders(ctx, uow, d)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	if err = h.dispatcher.Dispatch(d, selected, now); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAssignmentConflict, err)
	}

	merged, err := h.dispatcher.MergeRoute(planned, append(assigned, selected...))
	if err != nil {
		return nil, err
	}

	stops := merged
	if enRoute != nil {
		current, stopErr := route.StopOf(enRoute)
		if stopErr != nil {
			return nil, stopErr
		}
		stops = append([]route.Stop{current}, merged...)
	}

	if err = d.ConfirmRoute(route.Locations(stops), now); err != nil {
		return nil, err
	}

	orderRepo := uow.OrderRepository()
	for _, o := range selected {
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

func (h *AssignOrdersCommandHandler) load(
	ctx context.Context,
	uow UoW,
	cmd AssignOrdersCommand,
) (*driver.Driver, []*order.Order, error) {
	d, err := uow.DriverRepository().Get(ctx, cmd.DriverID())
	if err != nil {
		return nil, nil, err
	}

	orderRepo := uow.OrderRepository()
	selected := make([]*order.Order, 0, len(cmd.OrderIDs()))
	for _, id := range cmd.OrderIDs() {
		o, getErr := orderRepo.Get(ctx, id)
		if getErr != nil {
			return nil, nil, getErr
		}
		selected = append(selected, o)
	}
	return d, selected, nil
}

// driverOrders returns the driver's EnRoute order, if any, and their Assigned
// orders in current route sequence.
func (h *AssignOrdersCommandHandler) driverOrders(
	ctx context.Context,
	uow UoW,
	d *driver.Driver,
) (*order.Order, []*order.Order, error) {
	orders, err := uow.OrderRepository().GetByDriver(ctx, d.ID())
	if err != nil {
		return nil, nil, err
	}

	var assigned []*order.Order
	for _, o := range h.sequencer.Sort(orders, d.Route()) {
		if o.Status() == order.Assigned {
			assigned = append(assigned, o)
		}
	}
	return h.sequencer.CurrentEnRoute(orders), assigned, nil
}

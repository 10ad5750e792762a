package queries

import (
	"context"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/services"
	"lastmile/internal/core/ports"
)

// DriverStopsView lists a driver's orders in route sequence.
type DriverStopsView struct {
	Driver DriverView
	Stops  []OrderView
	// Next is the order the driver should head to: the EnRoute order, or the
	// first Assigned one when the route has not started.
	Next *kernel.UUID
	// AllDelivered is true when the driver has orders and every one is Delivered.
	AllDelivered bool
}

type GetDriverStopsQueryHandler struct {
	uowFactory ports.UnitOfWorkFactory
	sequencer  services.RouteSequencer
}

func NewGetDriverStopsQueryHandler(uowFactory ports.UnitOfWorkFactory) GetDriverStopsQueryHandler {
	return GetDriverStopsQueryHandler{uowFactory: uowFactory, sequencer: services.NewRouteSequencer()}
}

func (h GetDriverStopsQueryHandler) Handle(ctx context.Context, query GetDriverStopsQuery) (DriverStopsView, error) {
	if err := query.Validate(); err != nil {
		return DriverStopsView{}, err
	}

	var view DriverStopsView
	err := read(ctx, h.uowFactory, func(uow ports.UnitOfWork) error {
		d, err := uow.DriverRepository().Get(ctx, query.DriverID())
		if err != nil {
			return err
		}
		orders, err := uow.OrderRepository().GetByDriver(ctx, d.ID())
		if err != nil {
			return err
		}

		sorted := h.sequencer.Sort(orders, d.Route())
		view = DriverStopsView{
			Driver:       driverView(d),
			Stops:        orderViews(sorted),
			AllDelivered: len(sorted) > 0,
		}
		for _, o := range sorted {
			if o.Status() != order.Delivered {
				view.AllDelivered = false
			}
		}

		next := h.sequencer.CurrentEnRoute(sorted)
		if next == nil {
			next = h.sequencer.NextAssigned(sorted, d.Route())
		}
		if next != nil {
			id := next.ID()
			view.Next = &id
		}
		return nil
	})
	if err != nil {
		return DriverStopsView{}, err
	}
	return view, nil
}

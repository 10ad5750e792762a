// Package queries contains read operations for retrieving dispatch state.
// Queries return read models built from the aggregates; they open a unit of
// work only to read and always roll it back.
package queries

import (
	"context"
	"time"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/ports"
)

// DriverView is the read model of a driver.
type DriverView struct {
	ID                 kernel.UUID
	Name               string
	Status             driver.Status
	Position           *kernel.Position
	Route              []kernel.Location
	RouteConfirmed     bool
	LastLocationUpdate *time.Time
}

func driverView(d *driver.Driver) DriverView {
	v := DriverView{
		ID:             d.ID(),
		Name:           d.Name(),
		Status:         d.Status(),
		Route:          d.Route(),
		RouteConfirmed: d.RouteConfirmed(),
	}
	if p, ok := d.Position(); ok {
		v.Position = &p
	}
	if at, ok := d.LastLocationUpdate(); ok {
		v.LastLocationUpdate = &at
	}
	return v
}

// OrderView is the read model of an order.
type OrderView struct {
	ID          kernel.UUID
	Customer    string
	Address     string
	Notes       string
	Location    *kernel.Location
	Status      order.Status
	DriverID    *kernel.UUID
	Priority    order.Priority
	CreatedAt   time.Time
	DeliveredAt *time.Time
	ProofRef    string
}

func orderView(o *order.Order) OrderView {
	s := o.Snapshot()
	return OrderView{
		ID:          s.ID,
		Customer:    s.Customer,
		Address:     s.Address,
		Notes:       s.Notes,
		Location:    s.Location,
		Status:      s.Status,
		DriverID:    s.DriverID,
		Priority:    s.Priority,
		CreatedAt:   s.CreatedAt,
		DeliveredAt: s.DeliveredAt,
		ProofRef:    s.ProofRef,
	}
}

func orderViews(orders []*order.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}
	return views
}

// read runs fn inside a unit of work that is always rolled back.
func read(ctx context.Context, factory ports.UnitOfWorkFactory, fn func(uow ports.UnitOfWork) error) error {
	uow := factory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return fn(uow)
}

package memory

import (
	"context"
	"fmt"
	"slices"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/incident"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
)

type driverRepository struct {
	uow *UnitOfWork
}

func (r *driverRepository) Add(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.state()
	if err != nil {
		return err
	}
	if _, exists := s.drivers[aggregate.ID()]; exists {
		return errs.NewValueIsInvalidError(fmt.Sprintf("driver %s already exists", aggregate.ID()))
	}

	s.drivers[aggregate.ID()] = aggregate.Snapshot()
	s.driverIDs = append(s.driverIDs, aggregate.ID())
	r.uow.track(aggregate)
	return nil
}

func (r *driverRepository) Update(_ context.Context, aggregate *driver.Driver) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.state()
	if err != nil {
		return err
	}
	if _, exists := s.drivers[aggregate.ID()]; !exists {
		return errs.NewObjectNotFoundError("driver", aggregate.ID().String())
	}

	s.drivers[aggregate.ID()] = aggregate.Snapshot()
	r.uow.track(aggregate)
	return nil
}

func (r *driverRepository) Get(_ context.Context, id kernel.UUID) (*driver.Driver, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	s, err := r.uow.state()
	if err != nil {
		return nil, err
	}
	snap, ok := s.drivers[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("driver", id.String())
	}
	return driver.RestoreDriver(snap)
}

func (r *driverRepository) GetAll(_ context.Context) ([]*driver.Driver, error) {
	return r.find(func(driver.Snapshot) bool { return true })
}

func (r *driverRepository) GetAllActive(_ context.Context) ([]*driver.Driver, error) {
	return r.find(func(s driver.Snapshot) bool { return s.Status == driver.Active })
}

func (r *driverRepository) find(match func(driver.Snapshot) bool) ([]*driver.Driver, error) {
	s, err := r.uow.state()
	if err != nil {
		return nil, err
	}

	drivers := make([]*driver.Driver, 0, len(s.driverIDs))
	for _, id := range s.driverIDs {
		snap := s.drivers[id]
		if !match(snap) {
			continue
		}
		d, restoreErr := driver.RestoreDriver(snap)
		if restoreErr != nil {
			return nil, restoreErr
		}
		drivers = append(drivers, d)
	}
	return drivers, nil
}

type orderRepository struct {
	uow *UnitOfWork
}

func (r *orderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.state()
	if err != nil {
		return err
	}
	if _, exists := s.orders[aggregate.ID()]; exists {
		return errs.NewValueIsInvalidError(fmt.Sprintf("order %s already exists", aggregate.ID()))
	}

	s.orders[aggregate.ID()] = aggregate.Snapshot()
	s.orderIDs = append(s.orderIDs, aggregate.ID())
	r.uow.track(aggregate)
	return nil
}

func (r *orderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	s, err := r.uow.state()
	if err != nil {
		return err
	}
	if _, exists := s.orders[aggregate.ID()]; !exists {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}

	s.orders[aggregate.ID()] = aggregate.Snapshot()
	r.uow.track(aggregate)
	return nil
}

func (r *orderRepository) Delete(_ context.Context, id kernel.UUID) error {
	s, err := r.uow.state()
	if err != nil {
		return err
	}
	if _, exists := s.orders[id]; !exists {
		return errs.NewObjectNotFoundError("order", id.String())
	}

	delete(s.orders, id)
	s.orderIDs = slices.DeleteFunc(s.orderIDs, func(other kernel.UUID) bool { return other == id })
	return nil
}

func (r *orderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	s, err := r.uow.state()
	if err != nil {
		return nil, err
	}
	snap, ok := s.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snap)
}

func (r *orderRepository) GetAll(_ context.Context) ([]*order.Order, error) {
	return r.find(func(order.Snapshot) bool { return true })
}

func (r *orderRepository) GetByStatus(_ context.Context, status order.Status) ([]*order.Order, error) {
	return r.find(func(s order.Snapshot) bool { return s.Status == status })
}

func (r *orderRepository) GetByDriver(_ context.Context, driverID kernel.UUID) ([]*order.Order, error) {
	return r.find(func(s order.Snapshot) bool {
		return s.DriverID != nil && *s.DriverID == driverID
	})
}

func (r *orderRepository) find(match func(order.Snapshot) bool) ([]*order.Order, error) {
	s, err := r.uow.state()
	if err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(s.orderIDs))
	for _, id := range s.orderIDs {
		snap := s.orders[id]
		if !match(snap) {
			continue
		}
		o, restoreErr := order.RestoreOrder(snap)
		if restoreErr != nil {
			return nil, restoreErr
		}
		orders = append(orders, o)
	}
	return orders, nil
}

type incidentRepository struct {
	uow *UnitOfWork
}

func (r *incidentRepository) Add(_ context.Context, record *incident.Incident) error {
	if record == nil {
		return errs.NewValueIsRequiredError("incident")
	}
	s, err := r.uow.state()
	if err != nil {
		return err
	}
	s.incidents = append(s.incidents, record)
	return nil
}

func (r *incidentRepository) GetAll(_ context.Context) ([]*incident.Incident, error) {
	s, err := r.uow.state()
	if err != nil {
		return nil, err
	}
	records := slices.Clone(s.incidents)
	slices.Reverse(records)
	return records, nil
}

func (r *incidentRepository) GetByOrder(_ context.Context, orderID kernel.UUID) ([]*incident.Incident, error) {
	s, err := r.uow.state()
	if err != nil {
		return nil, err
	}
	var records []*incident.Incident
	for i := len(s.incidents) - 1; i >= 0; i-- {
		if s.incidents[i].OrderID() == orderID {
			records = append(records, s.incidents[i])
		}
	}
	return records, nil
}

type settingsRepository struct {
	uow *UnitOfWork
}

func (r *settingsRepository) GetDepot(_ context.Context) (kernel.Location, error) {
	s, err := r.uow.state()
	if err != nil {
		return kernel.Location{}, err
	}
	if s.depot == nil {
		return kernel.Location{}, errs.NewObjectNotFoundError("depot", "settings")
	}
	return *s.depot, nil
}

func (r *settingsRepository) SetDepot(_ context.Context, depot kernel.Location) error {
	if err := depot.Validate(); err != nil {
		return err
	}
	s, err := r.uow.state()
	if err != nil {
		return err
	}
	s.depot = &depot
	return nil
}

package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/pkg/errs"
)

// SelectionSpreadWindow is the creation-time span of a selection above which
// the operator is warned about the oldest selected order.
const SelectionSpreadWindow = 10 * time.Minute

var ErrNoOrdersSelected = errs.NewValueIsRequiredError("order ids")

// OrderDispatcher assigns a batch of pending orders to one driver.
//
// Business rules:
//   - The driver must be Active
//   - Every order must be PendingAssignment with a resolved Location
//   - The batch is all or nothing: nothing is mutated unless every order qualifies
//
// Example usage:
//
//	dispatcher := NewOrderDispatcher()
//	if err := dispatcher.Dispatch(d, selected, now); err != nil {
//	    return err
//	}
type OrderDispatcher struct{}

func NewOrderDispatcher() OrderDispatcher {
	return OrderDispatcher{}
}

// Validate checks the batch without mutating anything.
func (OrderDispatcher) Validate(d *driver.Driver, orders []*order.Order) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := d.ValidateActive(); err != nil {
		return err
	}
	if len(orders) == 0 {
		return ErrNoOrdersSelected
	}

	var problems error
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return err
		}
		if o.Status() != order.PendingAssignment {
			problems = errors.Join(problems, fmt.Errorf("order %s: %w", o.ID(),
				errs.NewValueIsInvalidErrorWithCause("status",
					fmt.Errorf("%s is not a valid status to assign", o.Status()))))
			continue
		}
		if _, ok := o.Location(); !ok {
			problems = errors.Join(problems, fmt.Errorf("order %s: %w", o.ID(), order.ErrOrderHasNoLocation))
		}
	}
	return problems
}

// Dispatch validates the batch and assigns every order to d.
func (od OrderDispatcher) Dispatch(d *driver.Driver, orders []*order.Order, at time.Time) error {
	if err := od.Validate(d, orders); err != nil {
		return err
	}
	for _, o := range orders {
		if err := o.Assign(d.ID(), at); err != nil {
			return err
		}
	}
	return nil
}

// OldestIfSpread returns the oldest order when the creation times of the
// selection span more than SelectionSpreadWindow, otherwise nil.
func (OrderDispatcher) OldestIfSpread(orders []*order.Order) *order.Order {
	if len(orders) < 2 {
		return nil
	}
	oldest := slices.MinFunc(orders, func(a, b *order.Order) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	newest := slices.MaxFunc(orders, func(a, b *order.Order) int { return a.CreatedAt().Compare(b.CreatedAt()) })
	if newest.CreatedAt().Sub(oldest.CreatedAt()) > SelectionSpreadWindow {
		return oldest
	}
	return nil
}

// MergeRoute keeps the stops of planned whose order is still in assigned, in
// planned order, then appends the remaining assigned orders in their
// existing sequence.
func (OrderDispatcher) MergeRoute(planned []route.Stop, assigned []*order.Order) ([]route.Stop, error) {
	byID := make(map[kernel.UUID]*order.Order, len(assigned))
	for _, o := range assigned {
		byID[o.ID()] = o
	}

	merged := make([]route.Stop, 0, len(assigned))
	used := make(map[kernel.UUID]struct{}, len(assigned))
	for _, s := range planned {
		o, ok := byID[s.OrderID]
		if !ok {
			continue
		}
		if _, dup := used[s.OrderID]; dup {
			continue
		}
		stop, err := route.StopOf(o)
		if err != nil {
			return nil, err
		}
		merged = append(merged, stop)
		used[s.OrderID] = struct{}{}
	}

	for _, o := range assigned {
		if _, ok := used[o.ID()]; ok {
			continue
		}
		stop, err := route.StopOf(o)
		if err != nil {
			return nil, err
		}
		merged = append(merged, stop)
	}
	return merged, nil
}

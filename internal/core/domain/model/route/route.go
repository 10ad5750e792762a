// Package route holds the stop representation shared by the optimizer and the
// operator's route draft.
package route

import (
	"errors"
	"fmt"
	"slices"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"
)

var (
	ErrStopNotFound     = errors.New("stop not found in route draft")
	ErrIndexOutOfRange  = errs.NewValueIsInvalidErrorWithCause("stop index", errors.New("index out of range"))
	ErrDraftIsEmpty     = errs.NewValueIsRequiredError("route draft stops")
	ErrDuplicateStop    = errs.NewValueIsInvalidErrorWithCause("route draft stops", errors.New("duplicate order"))
	ErrDirectionInvalid = errs.NewValueIsInvalidErrorWithCause("direction", errors.New("must be up or down"))
)

// Stop is one order's place in a route.
type Stop struct {
	OrderID  kernel.UUID
	Location kernel.Location
	Priority order.Priority
}

// StopOf builds the stop for an order that has a resolved location.
func StopOf(o *order.Order) (Stop, error) {
	location, ok := o.Location()
	if !ok {
		return Stop{}, fmt.Errorf("order %s: %w", o.ID(), order.ErrOrderHasNoLocation)
	}
	return Stop{OrderID: o.ID(), Location: location, Priority: o.Priority()}, nil
}

// Locations projects the stops to the Location list stored on a driver.
func Locations(stops []Stop) []kernel.Location {
	locations := make([]kernel.Location, 0, len(stops))
	for _, s := range stops {
		locations = append(locations, s.Location)
	}
	return locations
}

// Direction of a manual move in a draft.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	}
	return "", ErrDirectionInvalid
}

// Draft is the operator's scratch copy of a driver's route. Nothing in a
// draft affects the driver until it is confirmed.
type Draft struct {
	DriverID kernel.UUID
	Stops    []Stop
	// Optimized is true when the current order came from the external optimizer.
	Optimized bool
	Warning   string
}

func NewDraft(driverID kernel.UUID, stops []Stop) (*Draft, error) {
	if err := driverID.Validate(); err != nil {
		return nil, err
	}
	seen := make(map[kernel.UUID]struct{}, len(stops))
	for _, s := range stops {
		if _, dup := seen[s.OrderID]; dup {
			return nil, ErrDuplicateStop
		}
		seen[s.OrderID] = struct{}{}
	}
	return &Draft{DriverID: driverID, Stops: slices.Clone(stops)}, nil
}

// Move swaps the stop at index with its neighbour. Moving the first stop up or
// the last stop down is a no-op.
func (d *Draft) Move(index int, direction Direction) error {
	if index < 0 || index >= len(d.Stops) {
		return ErrIndexOutOfRange
	}

	var other int
	switch direction {
	case Up:
		other = index - 1
	case Down:
		other = index + 1
	default:
		return ErrDirectionInvalid
	}
	if other < 0 || other >= len(d.Stops) {
		return nil
	}

	d.Stops[index], d.Stops[other] = d.Stops[other], d.Stops[index]
	d.Optimized = false
	d.Warning = ""
	return nil
}

// SetPriority changes the priority of one stop in the draft.
func (d *Draft) SetPriority(orderID kernel.UUID, priority order.Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	i := slices.IndexFunc(d.Stops, func(s Stop) bool { return s.OrderID.IsEqual(orderID) })
	if i < 0 {
		return ErrStopNotFound
	}
	d.Stops[i].Priority = priority
	return nil
}

// Replace installs a new sequence, typically the optimizer's answer.
func (d *Draft) Replace(stops []Stop, optimized bool, warning string) {
	d.Stops = slices.Clone(stops)
	d.Optimized = optimized
	d.Warning = warning
}

// OrderIDs returns the draft's orders in sequence.
func (d *Draft) OrderIDs() []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(d.Stops))
	for _, s := range d.Stops {
		ids = append(ids, s.OrderID)
	}
	return ids
}

package services

import (
	"slices"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
)

// RouteSequencer orders a driver's orders by the index of their address in
// the driver's route. Orders whose address is not in the route keep their
// relative order and go last.
type RouteSequencer struct{}

func NewRouteSequencer() RouteSequencer {
	return RouteSequencer{}
}

// Sort returns a new slice; the input is not modified.
func (RouteSequencer) Sort(orders []*order.Order, route []kernel.Location) []*order.Order {
	index := make(map[string]int, len(route))
	for i, stop := range route {
		if _, ok := index[stop.Address()]; !ok {
			index[stop.Address()] = i
		}
	}

	position := func(o *order.Order) int {
		if i, ok := index[o.Address()]; ok {
			return i
		}
		return len(route)
	}

	sorted := slices.Clone(orders)
	slices.SortStableFunc(sorted, func(a, b *order.Order) int {
		return position(a) - position(b)
	})
	return sorted
}

// NextAssigned returns the first Assigned order in route sequence, or nil.
func (s RouteSequencer) NextAssigned(orders []*order.Order, route []kernel.Location) *order.Order {
	for _, o := range s.Sort(orders, route) {
		if o.Status() == order.Assigned {
			return o
		}
	}
	return nil
}

// CurrentEnRoute returns the driver's EnRoute order, or nil.
func (RouteSequencer) CurrentEnRoute(orders []*order.Order) *order.Order {
	for _, o := range orders {
		if o.Status() == order.EnRoute {
			return o
		}
	}
	return nil
}

package services_test

import (
	"testing"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteSequencer_Sort(t *testing.T) {
	d := newActiveDriver(t)
	a := assignedOrderAt(t, d, northOfDepot(1, "A"))
	b := assignedOrderAt(t, d, northOfDepot(2, "B"))
	c := assignedOrderAt(t, d, northOfDepot(3, "C"))
	x := assignedOrderAt(t, d, northOfDepot(4, "X"))
	y := assignedOrderAt(t, d, northOfDepot(5, "Y"))

	route := []kernel.Location{northOfDepot(3, "C"), northOfDepot(1, "A"), northOfDepot(2, "B")}
	input := []*order.Order{x, a, b, y, c}

	sorted := services.NewRouteSequencer().Sort(input, route)

	assert.Equal(t, []*order.Order{c, a, b, x, y}, sorted, "unknown addresses go last in input order")
	assert.Equal(t, []*order.Order{x, a, b, y, c}, input, "input must not be reordered")
}

func TestRouteSequencer_NextAssigned(t *testing.T) {
	d := newActiveDriver(t)
	a := assignedOrderAt(t, d, northOfDepot(1, "A"))
	b := assignedOrderAt(t, d, northOfDepot(2, "B"))
	route := []kernel.Location{northOfDepot(1, "A"), northOfDepot(2, "B")}
	seq := services.NewRouteSequencer()

	assert.Same(t, a, seq.NextAssigned([]*order.Order{b, a}, route))

	require.NoError(t, a.StartRoute(now))
	assert.Same(t, b, seq.NextAssigned([]*order.Order{b, a}, route))
	assert.Same(t, a, seq.CurrentEnRoute([]*order.Order{b, a}))

	require.NoError(t, b.StartRoute(now))
	assert.Nil(t, seq.NextAssigned([]*order.Order{b, a}, route))
}

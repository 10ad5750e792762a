package route_test

import (
	"testing"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stop(t *testing.T, address string) route.Stop {
	t.Helper()
	l, err := kernel.NewLocation(36.13, -5.45, address)
	require.NoError(t, err)
	return route.Stop{OrderID: kernel.NewUUID(), Location: l, Priority: order.PriorityMedium}
}

func addresses(d *route.Draft) []string {
	var out []string
	for _, s := range d.Stops {
		out = append(out, s.Location.Address())
	}
	return out
}

func TestDraft_Move(t *testing.T) {
	d, err := route.NewDraft(kernel.NewUUID(), []route.Stop{stop(t, "a"), stop(t, "b"), stop(t, "c")})
	require.NoError(t, err)
	d.Optimized = true

	require.NoError(t, d.Move(1, route.Up))
	assert.Equal(t, []string{"b", "a", "c"}, addresses(d))
	assert.False(t, d.Optimized)

	require.NoError(t, d.Move(1, route.Down))
	assert.Equal(t, []string{"b", "c", "a"}, addresses(d))

	require.NoError(t, d.Move(0, route.Up))
	require.NoError(t, d.Move(2, route.Down))
	assert.Equal(t, []string{"b", "c", "a"}, addresses(d))

	require.ErrorIs(t, d.Move(5, route.Up), route.ErrIndexOutOfRange)
	require.ErrorIs(t, d.Move(0, "sideways"), route.ErrDirectionInvalid)
}

func TestDraft_SetPriority(t *testing.T) {
	a := stop(t, "a")
	d, _ := route.NewDraft(kernel.NewUUID(), []route.Stop{a})

	require.NoError(t, d.SetPriority(a.OrderID, order.PriorityHigh))
	assert.Equal(t, order.PriorityHigh, d.Stops[0].Priority)

	require.ErrorIs(t, d.SetPriority(kernel.NewUUID(), order.PriorityLow), route.ErrStopNotFound)
	require.Error(t, d.SetPriority(a.OrderID, order.PriorityUnknown))
}

func TestNewDraft_RejectsDuplicates(t *testing.T) {
	a := stop(t, "a")

	_, err := route.NewDraft(kernel.NewUUID(), []route.Stop{a, a})

	require.ErrorIs(t, err, route.ErrDuplicateStop)
}

func TestStopOf(t *testing.T) {
	l, _ := kernel.NewLocation(36.13, -5.45, "Calle Real 1")
	o, err := order.NewOrder(kernel.NewUUID(), "Ana", "", l, order.PriorityHigh, time.Now())
	require.NoError(t, err)

	s, err := route.StopOf(o)

	require.NoError(t, err)
	assert.True(t, s.OrderID.IsEqual(o.ID()))
	assert.Equal(t, order.PriorityHigh, s.Priority)
	assert.Equal(t, []kernel.Location{l}, route.Locations([]route.Stop{s}))
}

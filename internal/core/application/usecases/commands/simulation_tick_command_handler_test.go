package commands_test

import (
	"testing"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTickHandler(w *world) commands.SimulationTickCommandHandler {
	return commands.NewSimulationTickCommandHandler(w.uow(), services.NewGeofenceSimulator(2*time.Second), w.clock)
}

func TestSimulationTickCommandHandler_AutoStartsOutsideDepot(t *testing.T) {
	w := newWorld(t)
	d := w.addDriver(true)
	first := w.addOrder(north(2, "First"), order.PriorityMedium, start)
	second := w.addOrder(north(3, "Second"), order.PriorityMedium, start)
	w.assign(d, first, second)
	w.updateDriver(d.ID(), func(d *driver.Driver) {
		_, err := d.UpdatePosition(north(0.2, "x").Position(), start)
		require.NoError(t, err)
	})
	w.clock.Add(2 * time.Second)
	handler := newTickHandler(w)

	result, err := handler.Handle(t.Context(), commands.NewSimulationTickCommand())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Drivers)
	assert.Equal(t, 1, result.Started)
	assert.Equal(t, 1, result.Moved)
	assert.Equal(t, order.EnRoute, w.order(first.ID()).Status())
	assert.Equal(t, order.Assigned, w.order(second.ID()).Status())

	// 40 km/h for 2 s is about 22 m.
	position, ok := w.driver(d.ID()).Position()
	require.True(t, ok)
	assert.InDelta(t, 0.2+40.0*2/3600, depot.DistanceTo(position), 1e-6)
}

func TestSimulationTickCommandHandler_NoAutoStartAtDepot(t *testing.T) {
	w := newWorld(t)
	d := w.addDriver(true)
	o := w.addOrder(north(2, "First"), order.PriorityMedium, start)
	w.assign(d, o)
	w.updateDriver(d.ID(), func(d *driver.Driver) {
		_, err := d.UpdatePosition(north(0.05, "x").Position(), start)
		require.NoError(t, err)
	})
	handler := newTickHandler(w)

	result, err := handler.Handle(t.Context(), commands.NewSimulationTickCommand())
	require.NoError(t, err)

	assert.False(t, result.Changed())
	assert.Equal(t, order.Assigned, w.order(o.ID()).Status())
}

func TestSimulationTickCommandHandler_UnconfirmedRouteDoesNotStart(t *testing.T) {
	w := newWorld(t)
	d := w.addDriver(true)
	o := w.addOrder(north(2, "First"), order.PriorityMedium, start)
	w.updateOrder(o.ID(), func(o *order.Order) {
		require.NoError(t, o.Assign(d.ID(), start))
	})
	w.updateDriver(d.ID(), func(d *driver.Driver) {
		_, err := d.UpdatePosition(north(1, "x").Position(), start)
		require.NoError(t, err)
	})
	handler := newTickHandler(w)

	result, err := handler.Handle(t.Context(), commands.NewSimulationTickCommand())
	require.NoError(t, err)

	assert.Zero(t, result.Started)
	assert.Equal(t, order.Assigned, w.order(o.ID()).Status())
}

func TestSimulationTickCommandHandler_ArrivalIsIdempotent(t *testing.T) {
	w := newWorld(t)
	d := w.addDriver(true)
	o := w.addOrder(north(0.3, "Close"), order.PriorityMedium, start)
	w.assign(d, o)
	w.startRoute(o)
	w.updateDriver(d.ID(), func(d *driver.Driver) {
		_, err := d.UpdatePosition(north(0.29, "x").Position(), start)
		require.NoError(t, err)
	})
	w.clock.Add(2 * time.Second)
	handler := newTickHandler(w)

	result, err := handler.Handle(t.Context(), commands.NewSimulationTickCommand())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)

	arrived := w.driver(d.ID())
	position, _ := arrived.Position()
	target, _ := o.Location()
	assert.True(t, target.Position().IsEqual(position))
	lastUpdate, _ := arrived.LastLocationUpdate()

	w.clock.Add(2 * time.Second)
	result, err = handler.Handle(t.Context(), commands.NewSimulationTickCommand())
	require.NoError(t, err)
	assert.False(t, result.Changed())

	again, _ := w.driver(d.ID()).LastLocationUpdate()
	assert.Equal(t, lastUpdate, again)
}

func TestSimulationTickCommandHandler_SkipsInactiveDrivers(t *testing.T) {
	w := newWorld(t)
	d := w.addDriver(true)
	o := w.addOrder(north(2, "First"), order.PriorityMedium, start)
	w.assign(d, o)
	w.startRoute(o)
	w.updateDriver(d.ID(), func(d *driver.Driver) { d.Deactivate() })
	handler := newTickHandler(w)

	result, err := handler.Handle(t.Context(), commands.NewSimulationTickCommand())
	require.NoError(t, err)

	assert.Zero(t, result.Drivers)
	_, moved := w.driver(d.ID()).Position()
	assert.False(t, moved)
}

package commands_test

import (
	"context"
	"testing"
	"time"

	"lastmile/internal/adapters/out/memory"
	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/ports"

	"github.com/facebookgo/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const kmPerDegreeLat = 111.19492664455873

var start = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func mustLocation(lat, lng float64, address string) kernel.Location {
	l, err := kernel.NewLocation(lat, lng, address)
	if err != nil {
		panic(err)
	}
	return l
}

var depot = mustLocation(36.1408, -5.4471, "P.º Victoria Eugenia, 17, Algeciras")

// north returns a point km kilometers due north of the depot.
func north(km float64, address string) kernel.Location {
	return mustLocation(depot.Lat()+km/kmPerDegreeLat, depot.Lng(), address)
}

type funcUoWFactory func() commands.UoW

func (f funcUoWFactory) Create() commands.UoW { return f() }

type funcDriverUoWFactory func() commands.DriverUoW

func (f funcDriverUoWFactory) Create() commands.DriverUoW { return f() }

type funcOrderUoWFactory func() commands.OrderUoW

func (f funcOrderUoWFactory) Create() commands.OrderUoW { return f() }

type funcSettingsUoWFactory func() commands.SettingsUoW

func (f funcSettingsUoWFactory) Create() commands.SettingsUoW { return f() }

// world is an in-memory dispatch state with a controllable clock.
type world struct {
	t     *testing.T
	store *memory.Store
	clock *clock.Mock
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{t: t, store: memory.NewStore(nil, nil), clock: clock.NewMock()}
	w.clock.Set(start)
	w.tx(func(uow ports.UnitOfWork) {
		require.NoError(t, uow.SettingsRepository().SetDepot(t.Context(), depot))
	})
	return w
}

func (w *world) uow() commands.UoWFactory {
	return funcUoWFactory(func() commands.UoW { return w.store.Create() })
}

func (w *world) driverUoW() commands.DriverUoWFactory {
	return funcDriverUoWFactory(func() commands.DriverUoW { return w.store.Create() })
}

func (w *world) orderUoW() commands.OrderUoWFactory {
	return funcOrderUoWFactory(func() commands.OrderUoW { return w.store.Create() })
}

func (w *world) settingsUoW() commands.SettingsUoWFactory {
	return funcSettingsUoWFactory(func() commands.SettingsUoW { return w.store.Create() })
}

func (w *world) tx(fn func(uow ports.UnitOfWork)) {
	w.t.Helper()
	uow := w.store.Create()
	require.NoError(w.t, uow.Begin(w.t.Context()))
	fn(uow)
	require.NoError(w.t, uow.Commit(w.t.Context()))
}

func (w *world) addDriver(active bool) *driver.Driver {
	w.t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), "Lucía", "")
	require.NoError(w.t, err)
	if active {
		d.Activate()
	}
	w.tx(func(uow ports.UnitOfWork) {
		require.NoError(w.t, uow.DriverRepository().Add(w.t.Context(), d))
	})
	return d
}

func (w *world) addOrder(l kernel.Location, p order.Priority, createdAt time.Time) *order.Order {
	w.t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "Customer "+l.Address(), "", l, p, createdAt)
	require.NoError(w.t, err)
	w.tx(func(uow ports.UnitOfWork) {
		require.NoError(w.t, uow.OrderRepository().Add(w.t.Context(), o))
	})
	return o
}

func (w *world) driver(id kernel.UUID) *driver.Driver {
	w.t.Helper()
	var d *driver.Driver
	w.tx(func(uow ports.UnitOfWork) {
		var err error
		d, err = uow.DriverRepository().Get(w.t.Context(), id)
		require.NoError(w.t, err)
	})
	return d
}

func (w *world) order(id kernel.UUID) *order.Order {
	w.t.Helper()
	var o *order.Order
	w.tx(func(uow ports.UnitOfWork) {
		var err error
		o, err = uow.OrderRepository().Get(w.t.Context(), id)
		require.NoError(w.t, err)
	})
	return o
}

// updateDriver applies fn to the stored driver.
func (w *world) updateDriver(id kernel.UUID, fn func(d *driver.Driver)) {
	w.t.Helper()
	w.tx(func(uow ports.UnitOfWork) {
		d, err := uow.DriverRepository().Get(w.t.Context(), id)
		require.NoError(w.t, err)
		fn(d)
		require.NoError(w.t, uow.DriverRepository().Update(w.t.Context(), d))
	})
}

func (w *world) updateOrder(id kernel.UUID, fn func(o *order.Order)) {
	w.t.Helper()
	w.tx(func(uow ports.UnitOfWork) {
		o, err := uow.OrderRepository().Get(w.t.Context(), id)
		require.NoError(w.t, err)
		fn(o)
		require.NoError(w.t, uow.OrderRepository().Update(w.t.Context(), o))
	})
}

// assign puts the orders on the driver's confirmed route in the given order.
func (w *world) assign(d *driver.Driver, orders ...*order.Order) {
	w.t.Helper()
	route := make([]kernel.Location, 0, len(orders))
	for _, o := range orders {
		w.updateOrder(o.ID(), func(o *order.Order) {
			require.NoError(w.t, o.Assign(d.ID(), w.clock.Now()))
		})
		l, _ := o.Location()
		route = append(route, l)
	}
	w.updateDriver(d.ID(), func(d *driver.Driver) {
		require.NoError(w.t, d.ConfirmRoute(route, w.clock.Now()))
	})
}

func (w *world) startRoute(o *order.Order) {
	w.t.Helper()
	w.updateOrder(o.ID(), func(o *order.Order) {
		require.NoError(w.t, o.StartRoute(w.clock.Now()))
	})
}

type PositionSamplerMock struct{ mock.Mock }

func (m *PositionSamplerMock) CurrentPosition(ctx context.Context, driverID kernel.UUID) (kernel.Position, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(kernel.Position), args.Error(1)
}

type ProofStoreMock struct{ mock.Mock }

func (m *ProofStoreMock) Save(
	ctx context.Context,
	orderID kernel.UUID,
	proof ports.Proof,
	capturedAt time.Time,
) (string, error) {
	args := m.Called(ctx, orderID, proof, capturedAt)
	return args.String(0), args.Error(1)
}

type GeocoderMock struct{ mock.Mock }

func (m *GeocoderMock) Resolve(ctx context.Context, address string) (ports.GeocodeResult, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(ports.GeocodeResult), args.Error(1)
}

type WaypointOptimizerMock struct{ mock.Mock }

func (m *WaypointOptimizerMock) OptimizeWaypoints(
	ctx context.Context,
	origin, destination kernel.Position,
	waypoints []kernel.Position,
) ([]int, error) {
	args := m.Called(ctx, origin, destination, waypoints)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

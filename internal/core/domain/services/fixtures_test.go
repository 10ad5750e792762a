package services_test

import (
	"testing"
	"time"

	"lastmile/internal/core/domain/model/driver"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"

	"github.com/stretchr/testify/require"
)

var (
	now   = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	depot = mustLocation(36.1408, -5.4471, "P.º Victoria Eugenia, 17, Algeciras")
)

const kmPerDegreeLat = 111.19492664455873

func mustLocation(lat, lng float64, address string) kernel.Location {
	l, err := kernel.NewLocation(lat, lng, address)
	if err != nil {
		panic(err)
	}
	return l
}

// northOfDepot returns a point km kilometers due north of the depot.
func northOfDepot(km float64, address string) kernel.Location {
	return mustLocation(depot.Lat()+km/kmPerDegreeLat, depot.Lng(), address)
}

func newActiveDriver(t *testing.T) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), "Lucía", "")
	require.NoError(t, err)
	d.Activate()
	return d
}

func newOrderAt(t *testing.T, l kernel.Location, p order.Priority) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "Customer "+l.Address(), "", l, p, now.Add(-time.Hour))
	require.NoError(t, err)
	return o
}

func assignedOrderAt(t *testing.T, d *driver.Driver, l kernel.Location) *order.Order {
	t.Helper()
	o := newOrderAt(t, l, order.PriorityMedium)
	require.NoError(t, o.Assign(d.ID(), now.Add(-time.Hour)))
	return o
}

func placeDriver(t *testing.T, d *driver.Driver, p kernel.Position, at time.Time) {
	t.Helper()
	_, err := d.UpdatePosition(p, at)
	require.NoError(t, err)
	d.ClearDomainEvents()
}

package order_test

import (
	"testing"
	"time"

	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func mustLocation(t *testing.T, address string) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(36.1300, -5.4500, address)
	require.NoError(t, err)
	return l
}

func newPendingOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "Ana Ruiz", "ring twice", mustLocation(t, "Calle Real 1, Algeciras"),
		order.PriorityMedium, createdAt)
	require.NoError(t, err)
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("should create pending order at resolved location", func(t *testing.T) {
		o := newPendingOrder(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.PendingAssignment, o.Status())
		assert.Equal(t, "Calle Real 1, Algeciras", o.Address())
		assert.Equal(t, "ring twice", o.Notes())
		assert.Nil(t, o.DriverID())
		_, delivered := o.DeliveredAt()
		assert.False(t, delivered)
		_, hasLocation := o.Location()
		assert.True(t, hasLocation)
		assert.Empty(t, o.DomainEvents())
	})

	t.Run("should join validation errors", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, " ", "", kernel.Location{}, order.PriorityUnknown, createdAt)

		require.Error(t, err)
		assert.Nil(t, o)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.ErrorIs(t, err, order.ErrCustomerIsRequired)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var o *order.Order
		require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	o := newPendingOrder(t)
	driverID := kernel.NewUUID()
	at := createdAt.Add(time.Minute)

	require.NoError(t, o.Assign(driverID, at))
	assert.Equal(t, order.Assigned, o.Status())
	assert.True(t, o.IsAssignedTo(driverID))

	require.NoError(t, o.StartRoute(at))
	assert.Equal(t, order.EnRoute, o.Status())

	require.NoError(t, o.Deliver("proof-1", at.Add(time.Minute)))
	assert.Equal(t, order.Delivered, o.Status())
	assert.Equal(t, "proof-1", o.ProofRef())
	deliveredAt, ok := o.DeliveredAt()
	require.True(t, ok)
	assert.Equal(t, at.Add(time.Minute), deliveredAt)

	events := o.DomainEvents()
	require.Len(t, events, 3)
	first, ok := events[0].(order.StatusChanged)
	require.True(t, ok)
	assert.Equal(t, order.PendingAssignment, first.From)
	assert.Equal(t, order.Assigned, first.To)
	require.NotNil(t, first.DriverID)
	assert.True(t, first.DriverID.IsEqual(driverID))
	assert.Equal(t, order.StatusChangedEventName, first.EventName())

	o.ClearDomainEvents()
	assert.Empty(t, o.DomainEvents())

	t.Run("terminal state rejects further transitions", func(t *testing.T) {
		require.Error(t, o.Assign(driverID, at))
		require.Error(t, o.StartRoute(at))
		require.Error(t, o.Deliver("again", at))
		assert.Equal(t, order.Delivered, o.Status())
	})
}

func TestOrder_InvalidTransitionsLeaveStateUntouched(t *testing.T) {
	o := newPendingOrder(t)

	require.ErrorIs(t, o.StartRoute(createdAt), errs.ErrValueIsInvalid)
	require.ErrorIs(t, o.Deliver("p", createdAt), errs.ErrValueIsInvalid)
	require.Error(t, o.Assign(kernel.UUID{}, createdAt))

	assert.Equal(t, order.PendingAssignment, o.Status())
	assert.Nil(t, o.DriverID())
	assert.Empty(t, o.DomainEvents())
}

func TestOrder_EditAndDelete(t *testing.T) {
	o := newPendingOrder(t)
	newLocation, _ := kernel.NewLocation(36.1350, -5.4400, "Avenida Fuerzas Armadas 2, Algeciras")

	require.NoError(t, o.Edit("Ana María Ruiz", " back door ", newLocation))
	assert.Equal(t, "Ana María Ruiz", o.Customer())
	assert.Equal(t, "back door", o.Notes())
	assert.Equal(t, "Avenida Fuerzas Armadas 2, Algeciras", o.Address())
	require.NoError(t, o.ValidateDeletable())

	require.NoError(t, o.Assign(kernel.NewUUID(), createdAt))
	require.Error(t, o.Edit("x", "", newLocation))
	require.Error(t, o.ValidateDeletable())
}

func TestOrder_ChangePriority(t *testing.T) {
	o := newPendingOrder(t)

	require.NoError(t, o.ChangePriority(order.PriorityHigh))
	require.NoError(t, o.Assign(kernel.NewUUID(), createdAt))
	require.NoError(t, o.ChangePriority(order.PriorityLow))
	assert.Equal(t, order.PriorityLow, o.Priority())

	require.NoError(t, o.StartRoute(createdAt))
	require.Error(t, o.ChangePriority(order.PriorityHigh))
	assert.Equal(t, order.PriorityLow, o.Priority())
}

func TestRestoreOrder(t *testing.T) {
	location := mustLocation(t, "Calle Real 1, Algeciras")
	driverID := kernel.NewUUID()
	deliveredAt := createdAt.Add(time.Hour)

	valid := order.Snapshot{
		ID:          kernel.NewUUID(),
		Customer:    "Ana",
		Address:     "Calle Real 1, Algeciras",
		Location:    &location,
		Status:      order.Delivered,
		DriverID:    &driverID,
		Priority:    order.PriorityHigh,
		CreatedAt:   createdAt,
		DeliveredAt: &deliveredAt,
		ProofRef:    "proof-9",
	}

	t.Run("should round trip a valid snapshot", func(t *testing.T) {
		o, err := order.RestoreOrder(valid)

		require.NoError(t, err)
		assert.Equal(t, valid, o.Snapshot())
	})

	tests := map[string]func(s *order.Snapshot){
		"driver without assignment status": func(s *order.Snapshot) { s.Status = order.PendingAssignment; s.DeliveredAt = nil },
		"assigned status without driver":   func(s *order.Snapshot) { s.DriverID = nil },
		"delivered without deliveredAt":    func(s *order.Snapshot) { s.DeliveredAt = nil },
		"deliveredAt while en route":       func(s *order.Snapshot) { s.Status = order.EnRoute },
		"assigned without location":        func(s *order.Snapshot) { s.Location = nil },
		"unknown status":                   func(s *order.Snapshot) { s.Status = order.Unknown },
	}

	for name, mutate := range tests {
		t.Run("should reject "+name, func(t *testing.T) {
			s := valid
			mutate(&s)

			o, err := order.RestoreOrder(s)

			require.Error(t, err)
			assert.Nil(t, o)
		})
	}

	t.Run("pending order may lack a location", func(t *testing.T) {
		o, err := order.RestoreOrder(order.Snapshot{
			ID:        kernel.NewUUID(),
			Customer:  "Luis",
			Address:   "somewhere",
			Status:    order.PendingAssignment,
			Priority:  order.PriorityMedium,
			CreatedAt: createdAt,
		})

		require.NoError(t, err)
		_, ok := o.Location()
		assert.False(t, ok)
		require.ErrorIs(t, o.Assign(kernel.NewUUID(), createdAt), order.ErrOrderHasNoLocation)
	})
}

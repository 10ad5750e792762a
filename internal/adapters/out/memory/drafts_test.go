package memory_test

import (
	"testing"
	"time"

	"lastmile/internal/adapters/out/memory"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftStore_SaveGetDelete(t *testing.T) {
	ctx := t.Context()
	store := memory.NewDraftStore()
	driverID := kernel.NewUUID()

	loc, err := kernel.NewLocation(36.14, -5.45, "Calle Real 1")
	require.NoError(t, err)
	draft, err := route.NewDraft(driverID, []route.Stop{
		{OrderID: kernel.NewUUID(), Location: loc, Priority: order.PriorityMedium},
	})
	require.NoError(t, err)

	_, err = store.Get(ctx, driverID)
	require.ErrorIs(t, err, ports.ErrDraftNotFound)

	require.NoError(t, store.Save(ctx, draft))
	draft.Stops[0].Priority = order.PriorityHigh

	got, err := store.Get(ctx, driverID)
	require.NoError(t, err)
	assert.Equal(t, order.PriorityMedium, got.Stops[0].Priority)

	require.NoError(t, store.Delete(ctx, driverID))
	_, err = store.Get(ctx, driverID)
	assert.ErrorIs(t, err, ports.ErrDraftNotFound)
}

func TestProofStore_Save(t *testing.T) {
	store := memory.NewProofStore()
	orderID := kernel.NewUUID()

	ref, err := store.Save(t.Context(), orderID, ports.Proof{Data: []byte("jpeg"), ContentType: "image/jpeg"}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, ref, orderID.String())

	proof, ok := store.Load(ref)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", proof.ContentType)

	_, err = store.Save(t.Context(), orderID, ports.Proof{}, time.Now())
	assert.Error(t, err)
}

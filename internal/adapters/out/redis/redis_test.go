package redis_test

import (
	"context"
	"testing"
	"time"

	"lastmile/internal/adapters/out/redis"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/domain/model/order"
	"lastmile/internal/core/domain/model/route"
	"lastmile/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, goredis.UniversalClient) {
	t.Helper()
	server := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return server, client
}

func newDraft(t *testing.T) *route.Draft {
	t.Helper()
	first, err := kernel.NewLocation(36.15, -5.44, "Calle Ancha 3")
	require.NoError(t, err)
	second, err := kernel.NewLocation(36.16, -5.43, "Plaza Alta 1")
	require.NoError(t, err)

	draft, err := route.NewDraft(kernel.NewUUID(), []route.Stop{
		{OrderID: kernel.NewUUID(), Location: first, Priority: order.PriorityHigh},
		{OrderID: kernel.NewUUID(), Location: second, Priority: order.PriorityLow},
	})
	require.NoError(t, err)
	draft.Optimized = true
	draft.Warning = "w"
	return draft
}

func TestDraftStore_SaveGetDelete(t *testing.T) {
	ctx := t.Context()
	server, client := newRedis(t)
	store := redis.NewDraftStore(client, time.Hour)
	draft := newDraft(t)

	require.NoError(t, store.Save(ctx, draft))
	assert.Equal(t, time.Hour, server.TTL("lastmile:route-draft:"+draft.DriverID.String()))

	got, err := store.Get(ctx, draft.DriverID)
	require.NoError(t, err)
	assert.Equal(t, draft.DriverID, got.DriverID)
	assert.Equal(t, draft.OrderIDs(), got.OrderIDs())
	assert.Equal(t, order.PriorityHigh, got.Stops[0].Priority)
	assert.Equal(t, "Plaza Alta 1", got.Stops[1].Location.Address())
	assert.True(t, got.Optimized)
	assert.Equal(t, "w", got.Warning)

	require.NoError(t, store.Delete(ctx, draft.DriverID))
	_, err = store.Get(ctx, draft.DriverID)
	require.ErrorIs(t, err, ports.ErrDraftNotFound)
}

func TestDraftStore_Expires(t *testing.T) {
	ctx := t.Context()
	server, client := newRedis(t)
	store := redis.NewDraftStore(client, 0)
	draft := newDraft(t)

	require.NoError(t, store.Save(ctx, draft))
	server.FastForward(redis.DefaultDraftTTL + time.Second)

	_, err := store.Get(ctx, draft.DriverID)
	require.ErrorIs(t, err, ports.ErrDraftNotFound)
}

type GeocoderMock struct {
	mock.Mock
}

func (m *GeocoderMock) Resolve(ctx context.Context, address string) (ports.GeocodeResult, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(ports.GeocodeResult), args.Error(1)
}

func TestGeocodeCache_CachesValidAnswers(t *testing.T) {
	ctx := t.Context()
	_, client := newRedis(t)
	next := &GeocoderMock{}
	next.On("Resolve", mock.Anything, "Calle  Real 1").
		Return(ports.GeocodeResult{Valid: true, FormattedAddress: "Calle Real, 1", Lat: 36.13, Lng: -5.45, Locality: "Algeciras"}, nil).
		Once()

	cache := redis.NewGeocodeCache(next, client, time.Hour, nil)

	first, err := cache.Resolve(ctx, "Calle  Real 1")
	require.NoError(t, err)
	second, err := cache.Resolve(ctx, "calle real 1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "Algeciras", second.Locality)
	next.AssertExpectations(t)
}

func TestGeocodeCache_DoesNotCacheMisses(t *testing.T) {
	ctx := t.Context()
	_, client := newRedis(t)
	next := &GeocoderMock{}
	next.On("Resolve", mock.Anything, "nowhere").
		Return(ports.GeocodeResult{Warning: "address not found"}, nil).
		Twice()

	cache := redis.NewGeocodeCache(next, client, time.Hour, nil)
	for range 2 {
		result, err := cache.Resolve(ctx, "nowhere")
		require.NoError(t, err)
		assert.False(t, result.Valid)
	}
	next.AssertExpectations(t)
}

func TestGeocodeCache_FallsThroughWhenRedisIsDown(t *testing.T) {
	ctx := t.Context()
	server, client := newRedis(t)
	server.Close()

	next := &GeocoderMock{}
	next.On("Resolve", mock.Anything, "Calle Real 1").
		Return(ports.GeocodeResult{Valid: true, FormattedAddress: "Calle Real, 1"}, nil)

	result, err := redis.NewGeocodeCache(next, client, time.Hour, nil).Resolve(ctx, "Calle Real 1")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

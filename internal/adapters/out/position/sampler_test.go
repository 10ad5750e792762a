package position_test

import (
	"context"
	"testing"

	"lastmile/internal/adapters/out/position"
	"lastmile/internal/core/domain/model/kernel"
	"lastmile/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type PositionSamplerMock struct {
	mock.Mock
}

func (m *PositionSamplerMock) CurrentPosition(ctx context.Context, driverID kernel.UUID) (kernel.Position, error) {
	args := m.Called(ctx, driverID)
	return args.Get(0).(kernel.Position), args.Error(1)
}

func TestSampler_ContextPositionWins(t *testing.T) {
	fallback := &PositionSamplerMock{}
	s := position.NewSampler(fallback)
	want := kernel.MustNewPosition(36.14, -5.44)

	got, err := s.CurrentPosition(position.WithPosition(t.Context(), want), kernel.NewUUID())
	require.NoError(t, err)
	assert.True(t, want.IsEqual(got))
	fallback.AssertNotCalled(t, "CurrentPosition", mock.Anything, mock.Anything)
}

func TestSampler_FallsBack(t *testing.T) {
	id := kernel.NewUUID()
	want := kernel.MustNewPosition(36.15, -5.43)
	fallback := &PositionSamplerMock{}
	fallback.On("CurrentPosition", mock.Anything, id).Return(want, nil).Once()

	got, err := position.NewSampler(fallback).CurrentPosition(t.Context(), id)
	require.NoError(t, err)
	assert.True(t, want.IsEqual(got))
	fallback.AssertExpectations(t)
}

func TestSampler_NoSource(t *testing.T) {
	_, err := position.NewSampler(nil).CurrentPosition(t.Context(), kernel.NewUUID())
	require.ErrorIs(t, err, ports.ErrPositionUnavailable)

	_, ok := position.FromContext(t.Context())
	assert.False(t, ok)
}

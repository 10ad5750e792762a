package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/jobs"
	"lastmile/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type SimulationTickerMock struct{ mock.Mock }

func (m *SimulationTickerMock) Handle(ctx context.Context, cmd commands.SimulationTickCommand) (commands.TickResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TickResult), args.Error(1)
}

// countingTicker counts passes and can block inside one.
type countingTicker struct {
	calls   atomic.Int32
	release chan struct{}
}

func (c *countingTicker) Handle(context.Context, commands.SimulationTickCommand) (commands.TickResult, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	return commands.TickResult{}, nil
}

func TestSimulationJob_Run_RecordsOutcome(t *testing.T) {
	tests := []struct {
		name    string
		result  commands.TickResult
		err     error
		outcome string
	}{
		{name: "changed", result: commands.TickResult{Drivers: 1, Moved: 1}, outcome: "changed"},
		{name: "unchanged", result: commands.TickResult{Drivers: 2}, outcome: "unchanged"},
		{name: "error", err: errors.New("database is down"), outcome: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ticker := &SimulationTickerMock{}
			ticker.On("Handle", mock.Anything, mock.Anything).Return(tt.result, tt.err).Once()

			job := jobs.NewSimulationJob(ticker, time.Second, slog.Default())
			before := testutil.ToFloat64(metrics.SimulationTicks.WithLabelValues(tt.outcome))

			job.Run(t.Context())

			ticker.AssertExpectations(t)
			assert.InDelta(t, before+1, testutil.ToFloat64(metrics.SimulationTicks.WithLabelValues(tt.outcome)), 1e-9)
		})
	}
}

func TestSimulationJob_StartRunsOnSchedule(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the cron schedule")
	}

	ticker := &countingTicker{}
	job := jobs.NewSimulationJob(ticker, time.Second, slog.Default())
	require.NoError(t, job.Start())

	assert.Eventually(t, func() bool { return ticker.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	job.Stop()

	calls := ticker.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, calls, ticker.calls.Load(), "no pass runs after Stop")
}

func TestSimulationJob_StopWaitsForRunningPass(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for the cron schedule")
	}

	ticker := &countingTicker{release: make(chan struct{})}
	job := jobs.NewSimulationJob(ticker, time.Second, slog.Default())
	require.NoError(t, job.Start())
	require.Eventually(t, func() bool { return ticker.calls.Load() == 1 }, 3*time.Second, 20*time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		job.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a pass was running")
	case <-time.After(100 * time.Millisecond):
	}

	close(ticker.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the pass finished")
	}
}

func TestJobManager_StartStop(t *testing.T) {
	manager := jobs.NewJobManager(&countingTicker{}, 0, slog.Default())
	require.NoError(t, manager.StartAll())
	manager.StopAll()
}

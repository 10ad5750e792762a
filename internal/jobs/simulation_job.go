package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lastmile/internal/core/application/usecases/commands"
	"lastmile/internal/metrics"

	"github.com/robfig/cron/v3"
)

// SimulationTicker runs one simulation pass.
type SimulationTicker interface {
	Handle(ctx context.Context, cmd commands.SimulationTickCommand) (commands.TickResult, error)
}

// SimulationJob schedules the geofenced simulation pass at a fixed interval.
// A pass that is still running when the next one is due makes the next one
// skip.
type SimulationJob struct {
	ticker   SimulationTicker
	interval time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewSimulationJob creates the job. A non-positive interval means every two
// seconds.
func NewSimulationJob(ticker SimulationTicker, interval time.Duration, logger *slog.Logger) *SimulationJob {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	logger = logger.With("component", "simulation_job")
	cl := cronLogger{logger: logger}
	return &SimulationJob{
		ticker:   ticker,
		interval: interval,
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		logger: logger,
	}
}

// Start begins the schedule.
func (j *SimulationJob) Start() error {
	_, err := j.cron.AddFunc(fmt.Sprintf("@every %s", j.interval), func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Simulation job started", "interval", j.interval.String())
	return nil
}

// Run executes one pass and records its outcome.
func (j *SimulationJob) Run(ctx context.Context) {
	started := time.Now()
	result, err := j.ticker.Handle(ctx, commands.NewSimulationTickCommand())
	metrics.SimulationTickDuration.Observe(time.Since(started).Seconds())

	switch {
	case err != nil:
		metrics.SimulationTicks.WithLabelValues("error").Inc()
		j.logger.ErrorContext(ctx, "Simulation tick failed", "error", err)
	case result.Changed():
		metrics.SimulationTicks.WithLabelValues("changed").Inc()
		j.logger.DebugContext(ctx, "Simulation tick applied",
			"drivers", result.Drivers, "started", result.Started, "moved", result.Moved)
	default:
		metrics.SimulationTicks.WithLabelValues("unchanged").Inc()
	}
}

// Stop halts the schedule and waits for a running pass to finish.
func (j *SimulationJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Simulation job stopped")
}

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}

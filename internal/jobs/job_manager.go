package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	simulationJob *SimulationJob
}

// NewJobManager creates the manager. tickInterval is the simulation period.
func NewJobManager(ticker SimulationTicker, tickInterval time.Duration, logger *slog.Logger) *JobManager {
	return &JobManager{
		simulationJob: NewSimulationJob(ticker, tickInterval, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.simulationJob.Start(); err != nil {
		return fmt.Errorf("failed to start simulation job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs and waits for running passes.
func (jm *JobManager) StopAll() {
	jm.simulationJob.Stop()
}

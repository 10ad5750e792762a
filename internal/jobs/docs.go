// Package jobs provides scheduled background tasks for the dispatch service.
//
// The simulation job drives the geofence simulation with
// github.com/robfig/cron/v3 on an "@every" schedule (two seconds unless
// configured). Each pass is one unit of work; a pass that overruns makes the
// next one skip rather than queue.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(&simulationTickHandler, cfg.TickInterval, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// StopAll waits for a running pass, so no transaction is cut off at shutdown.
package jobs

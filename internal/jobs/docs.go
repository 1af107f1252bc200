// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs use github.com/robfig/cron/v3 with the seconds field enabled and are
// managed through JobManager:
//
//	jobManager := jobs.NewJobManager(dispatcher, cfg.Dispatch.RescanSpec, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// RescanJob calls Dispatcher.DispatchPending on its schedule. Overlapping
// passes are skipped rather than queued.
package jobs

package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager starts and stops the scheduled jobs together.
type JobManager struct {
	rescanJob *RescanJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(dispatcher PendingDispatcher, rescanSpec string, logger *slog.Logger) *JobManager {
	return &JobManager{
		rescanJob: NewRescanJob(dispatcher, rescanSpec, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.rescanJob.Start(); err != nil {
		return fmt.Errorf("failed to start rescan job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.rescanJob.Stop()
}

package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultRescanSpec runs the re-scan every five seconds.
const DefaultRescanSpec = "*/5 * * * * *"

// PendingDispatcher dispatches every order still waiting for a rider.
type PendingDispatcher interface {
	DispatchPending(ctx context.Context) (int, error)
}

// RescanJob periodically re-dispatches orders left pending, covering dropped
// triggers and exhausted retries.
type RescanJob struct {
	dispatcher PendingDispatcher
	spec       string
	timeout    time.Duration
	cron       *cron.Cron
	logger     *slog.Logger
}

// NewRescanJob creates a new re-scan job. spec is a six-field cron expression.
func NewRescanJob(dispatcher PendingDispatcher, spec string, logger *slog.Logger) *RescanJob {
	if spec == "" {
		spec = DefaultRescanSpec
	}
	return &RescanJob{
		dispatcher: dispatcher,
		spec:       spec,
		timeout:    30 * time.Second,
		cron:       cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:     logger.With("component", "rescan_job"),
	}
}

// Start schedules the job.
func (j *RescanJob) Start() error {
	_, err := j.cron.AddFunc(j.spec, j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Info("rescan job started", "schedule", j.spec)
	return nil
}

func (j *RescanJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.dispatcher.DispatchPending(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "rescan failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.InfoContext(ctx, "rescan assigned pending orders", "assigned", n)
	}
}

// Stop stops the job and waits for a running pass to finish.
func (j *RescanJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("rescan job stopped")
}

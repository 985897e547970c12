// Package scheduler triggers collection runs on a cron cadence.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one scheduled task. Its error is logged, never escalated: a bad
// run must not unstick the schedule.
type Job func(ctx context.Context) error

// Scheduler wraps robfig/cron with context plumbing and structured logs.
type Scheduler struct {
	cron       *cron.Cron
	logger     *zap.Logger
	jobTimeout time.Duration
}

// New creates a Scheduler. jobTimeout bounds each job invocation.
func New(logger *zap.Logger, jobTimeout time.Duration) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if jobTimeout <= 0 {
		jobTimeout = 15 * time.Minute
	}
	return &Scheduler{
		cron:       cron.New(),
		logger:     logger,
		jobTimeout: jobTimeout,
	}
}

// AddJob registers a job under a cron spec (supports descriptors such as
// "@every 30m").
func (s *Scheduler) AddJob(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		start := time.Now()
		s.logger.Info("job starting", zap.String("job", name))
		if err := job(ctx); err != nil {
			s.logger.Error("job failed",
				zap.String("job", name),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("job finished",
			zap.String("job", name),
			zap.Duration("duration", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	return nil
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the schedule and returns a context that is done once any
// in-flight job invocation has returned.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

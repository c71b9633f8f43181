// Package scheduler runs periodic syncs in daemon mode.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job is one sync pass.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a cron schedule. Overlapping runs are
// suppressed: a tick that fires while a sync is still in flight is
// skipped.
type Scheduler struct {
	schedule string
	job      Job
	logger   *slog.Logger

	cron       *cron.Cron
	mu         sync.Mutex
	isRunning  bool
	isSyncing  bool
	cancelFunc context.CancelFunc
}

// New creates a scheduler for the given cron schedule.
func New(schedule string, job Job, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		schedule: schedule,
		job:      job,
		logger:   logger,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the schedule. It returns immediately; ticks run on the
// cron goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runSync(runCtx)
	}); err != nil {
		cancel()
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	s.cancelFunc = cancel
	s.cron.Start()
	s.isRunning = true
	s.logger.Info("sync scheduler started", "schedule", s.schedule)
	return nil
}

// Stop halts the schedule and cancels any in-flight run.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cron.Stop()
	if s.cancelFunc != nil {
		s.cancelFunc()
	}
	s.isRunning = false
	s.logger.Info("sync scheduler stopped")
}

func (s *Scheduler) runSync(ctx context.Context) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		s.logger.Warn("previous sync still in progress, skipping this run")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled sync failed", "error", err)
	}
}

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"blog_feed/internal/domain"
)

// Syncer archives the feed once per call.
type Syncer interface {
	Sync(ctx context.Context) (*domain.SyncStats, error)
}

// Scheduler runs archive syncs one at a time on a fixed interval.
type Scheduler struct {
	syncer     Syncer
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger

	// failures counts consecutive failed runs; only the scheduling goroutine
	// touches it.
	failures int
}

func NewScheduler(syncer Syncer, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		syncer:     syncer,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger.With("component", "scheduler"),
	}
}

// Start syncs immediately and then on every tick until ctx is done. A failed
// run is logged by RunOnce and does not stop the loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("archive schedule started",
		"interval", s.interval,
		"run_timeout", s.runTimeout,
	)

	_ = s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("archive schedule stopped")
			return ctx.Err()
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sync bounded by the run timeout.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	stats, err := s.syncer.Sync(runCtx)
	if err != nil {
		s.failures++
		s.logger.Error("archive run failed",
			"consecutive_failures", s.failures,
			"error", err,
		)
		return err
	}

	if s.failures > 0 {
		s.logger.Info("archive run recovered", "after_failures", s.failures)
		s.failures = 0
	}
	s.logRun(stats)
	return nil
}

// ConsecutiveFailures returns how many runs in a row have failed.
func (s *Scheduler) ConsecutiveFailures() int {
	return s.failures
}

func (s *Scheduler) logRun(stats *domain.SyncStats) {
	if stats == nil {
		return
	}

	level := slog.LevelDebug
	if stats.Changed() > 0 || stats.Errors > 0 {
		level = slog.LevelInfo
	}
	s.logger.Log(context.Background(), level, "archive run finished",
		"fetched", stats.Fetched,
		"new", stats.New,
		"updated", stats.Updated,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)
}

// services/scheduler.go
package services

import (
	"context"
	"time"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/models"
)

// Applier is what the scheduler drives.
type Applier interface {
	Apply(ctx context.Context, trigger models.SyncTrigger) (*models.ApplyResult, error)
}

// Scheduler applies the route feed on a fixed interval. It is an optional
// in-process stand-in for the external cron trigger.
type Scheduler struct {
	applier  Applier
	interval time.Duration
}

func NewScheduler(applier Applier, interval time.Duration) *Scheduler {
	return &Scheduler{applier: applier, interval: interval}
}

// Run applies once immediately and then on every tick until ctx is done.
// Passes never overlap.
func (s *Scheduler) Run(ctx context.Context) {
	logger := log.WithComponent("scheduler")
	if s.interval <= 0 {
		logger.Info().Msg("Sync interval not set; in-process scheduler disabled")
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info().Dur("interval", s.interval).Msg("Scheduler started")
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	// Apply logs and records its own outcome.
	_, _ = s.applier.Apply(ctx, models.TriggerScheduled)
}

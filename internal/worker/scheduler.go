package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// Scheduler runs the refresh job on a fixed interval.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       *RefreshJob
	interval  time.Duration
	logger    zerolog.Logger
}

// NewScheduler creates a scheduler for job.
func NewScheduler(job *RefreshJob, logger zerolog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		job:       job,
		interval:  job.config.Interval,
		logger:    logger,
	}
}

// Start schedules the refresh and starts the scheduler. The first run
// happens immediately. Runs never overlap.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.job.Run(ctx); err != nil {
			s.logger.Error().Err(err).Msg("scheduled refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling refresh: %w", err)
	}

	s.logger.Info().Dur("interval", s.interval).Msg("refresh scheduler started")
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Running reports whether the scheduler is running.
func (s *Scheduler) Running() bool {
	return s.scheduler.IsRunning()
}

package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Lookup is the part of weather.Service the scheduler drives.
type Lookup interface {
	Submit(ctx context.Context, query string) error
	Refresh(ctx context.Context) error
}

// Scheduler fires the initial lookup and, optionally, periodic refreshes.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	lookup       Lookup
	defaultQuery string
	interval     time.Duration
	logger       *slog.Logger
}

// New creates a new Scheduler. An interval of zero disables refreshes.
func New(lookup Lookup, defaultQuery string, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		lookup:       lookup,
		defaultQuery: defaultQuery,
		interval:     interval,
		logger:       logger,
	}
}

// Start schedules the jobs and starts the underlying scheduler. The initial
// lookup for the default query runs exactly once, right away.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().StartImmediately().LimitRunsTo(1).Do(func() {
		s.logger.Info("scheduler: running initial lookup", "query", s.defaultQuery)
		if err := s.lookup.Submit(context.Background(), s.defaultQuery); err != nil {
			s.logger.Warn("scheduler: initial lookup failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	if s.interval > 0 {
		_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(func() {
			s.logger.Debug("scheduler: refreshing last lookup")
			if err := s.lookup.Refresh(context.Background()); err != nil {
				s.logger.Warn("scheduler: refresh failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Package scheduler runs named periodic jobs on top of gocron.
package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
)

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// New creates a stopped scheduler.
func New(logger *slog.Logger) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{scheduler: s, logger: logger}, nil
}

// Start begins running jobs.
func (s *Scheduler) Start() {
	s.logger.Debug("Starting scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	s.logger.Debug("Stopping scheduler")
	return s.scheduler.Shutdown()
}

// Every runs fn every interval. A run that overlaps the next tick is not
// doubled up; the next run is rescheduled instead.
func (s *Scheduler) Every(name string, interval time.Duration, fn func()) (string, error) {
	if interval <= 0 {
		return "", ferrors.ValidationError("interval must be positive").
			WithContext("job", name).WithContext("interval", interval.String()).Build()
	}
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.run, name, fn),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create %s job: %w", name, err)
	}
	s.logger.Debug("Scheduled job", logfields.JobID(job.ID().String()),
		slog.String("name", name), slog.Duration("interval", interval))
	return job.ID().String(), nil
}

// Remove unschedules the job with the given id.
func (s *Scheduler) Remove(id string) error {
	u, err := uuid.Parse(id)
	if err != nil {
		return ferrors.ValidationError("invalid job id").WithCause(err).WithContext("id", id).Build()
	}
	if err := s.scheduler.RemoveJob(u); err != nil {
		return fmt.Errorf("failed to remove job %s: %w", id, err)
	}
	return nil
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

func (s *Scheduler) run(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Scheduled job panicked", slog.String("name", name), slog.Any("panic", r))
		}
	}()
	fn()
}

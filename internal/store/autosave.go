package store

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/logfields"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
	"git.home.luguber.info/inful/kaizen/internal/scheduler"
)

const autosaveJob = "autosave"

// StartAutosave begins saving the document every settings.autoSaveIntervalMs.
// Calling it while autosave is running is a no-op.
func (s *Store) StartAutosave(ctx context.Context) error {
	s.autosaveMu.Lock()
	defer s.autosaveMu.Unlock()
	if s.sched != nil {
		return nil
	}
	interval, err := s.currentInterval()
	if err != nil {
		return err
	}
	sched, err := scheduler.New(s.logger)
	if err != nil {
		return err
	}
	sched.Start()
	s.sched = sched
	return s.scheduleLocked(ctx, interval)
}

// RestartAutosave reschedules the job with the document's current interval.
func (s *Store) RestartAutosave(ctx context.Context) error {
	s.autosaveMu.Lock()
	defer s.autosaveMu.Unlock()
	if s.sched == nil {
		return nil
	}
	interval, err := s.currentInterval()
	if err != nil {
		return err
	}
	if err := s.sched.Remove(s.autosaveID); err != nil {
		return err
	}
	return s.scheduleLocked(ctx, interval)
}

// StopAutosave stops the job and waits for a running tick to finish.
func (s *Store) StopAutosave() error {
	s.autosaveMu.Lock()
	defer s.autosaveMu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Stop()
	s.sched = nil
	s.autosaveID = ""
	s.autosaveInterval = 0
	return err
}

// AutosaveInterval returns the period of the running job, zero when stopped.
func (s *Store) AutosaveInterval() time.Duration {
	s.autosaveMu.Lock()
	defer s.autosaveMu.Unlock()
	return s.autosaveInterval
}

func (s *Store) currentInterval() (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return 0, ErrNotLoaded
	}
	return s.doc.Settings.AutoSaveInterval(), nil
}

// scheduleLocked requires autosaveMu.
func (s *Store) scheduleLocked(ctx context.Context, interval time.Duration) error {
	id, err := s.sched.Every(autosaveJob, interval, func() { s.autosaveTick(ctx) })
	if err != nil {
		return err
	}
	s.autosaveID = id
	s.autosaveInterval = interval
	s.logger.Debug("Autosave scheduled", slog.Duration("interval", interval))
	return nil
}

func (s *Store) rescheduleIfChanged(ctx context.Context, interval time.Duration) {
	s.autosaveMu.Lock()
	running, current := s.sched != nil, s.autosaveInterval
	s.autosaveMu.Unlock()
	if !running || current == interval {
		return
	}
	if err := s.RestartAutosave(ctx); err != nil {
		s.logger.Warn("Failed to reschedule autosave", logfields.Error(err))
	}
}

func (s *Store) autosaveTick(ctx context.Context) {
	err := s.Save(ctx)
	s.recorder.IncAutosave(metrics.Outcome(err))
	if err != nil {
		s.logger.Warn("Autosave failed", logfields.Error(err))
		return
	}
	s.logger.Debug("Autosaved")
}

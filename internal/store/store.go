package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/document"
	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/ids"
	"git.home.luguber.info/inful/kaizen/internal/localstore"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
	"git.home.luguber.info/inful/kaizen/internal/scheduler"
)

// ErrNotLoaded is returned by operations that need a document before Load ran.
var ErrNotLoaded = ferrors.InternalError("state not loaded").Build()

// Store holds the live document.
type Store struct {
	kv       localstore.KV
	clock    func() time.Time
	ids      ids.Source
	logger   *slog.Logger
	recorder metrics.Recorder

	mu  sync.Mutex
	doc *document.Document

	// autosaveMu serializes autosave control and is never taken while mu is held.
	autosaveMu       sync.Mutex
	sched            *scheduler.Scheduler
	autosaveID       string
	autosaveInterval time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDSource overrides the identifier source used for regenerated defaults.
func WithIDSource(src ids.Source) Option {
	return func(s *Store) { s.ids = src }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// New creates a store over kv. Call Load before anything else.
func New(kv localstore.KV, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		clock:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		ids:      ids.Random{},
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time { return s.clock() }

// IDs returns the store's identifier source.
func (s *Store) IDs() ids.Source { return s.ids }

// Load reads the persisted document. Absent or unparseable state is replaced
// by a freshly generated default document. A document written by a newer
// schema is returned as an error and left in place, as are storage failures.
func (s *Store) Load(ctx context.Context) (*document.Document, error) {
	raw, ok, err := s.kv.Get(ctx, localstore.KeyState)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryStorage, "read local state").
			WithContext("key", localstore.KeyState).Build()
	}

	var doc *document.Document
	if ok {
		var report document.MigrationReport
		doc, report, err = document.Migrate([]byte(raw), s.clock(), s.ids)
		switch {
		case errors.Is(err, document.ErrNewerSchema):
			return nil, ferrors.SchemaError("stored state was written by a newer kaizen").
				WithCause(err).
				WithContext("key", localstore.KeyState).
				WithHint("upgrade kaizen, or export the state with the newer version").
				Build()
		case err != nil:
			s.logger.Warn("Stored state unusable, regenerating defaults",
				logfields.StoreKey(localstore.KeyState), logfields.Error(err))
			doc = nil
		case len(report.Dropped) > 0:
			s.logger.Warn("Stored state partly unusable, sections reset to defaults",
				logfields.StoreKey(localstore.KeyState),
				slog.Any("dropped", report.Dropped))
		case report.Changed():
			s.logger.Info("Migrated stored state",
				slog.String("from", report.From),
				logfields.SchemaVersion(report.To),
				slog.Any("applied", report.Applied),
				slog.Any("backfilled", report.Backfilled),
				slog.Any("dropped", report.Dropped),
				slog.Bool("roadmap_regenerated", report.RoadmapRegenerated))
		}
	}
	if doc == nil {
		if doc, err = document.New(s.clock(), s.ids); err != nil {
			return nil, err
		}
		s.logger.Debug("Generated default state")
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return doc.Clone(), nil
}

// Save stamps meta.lastSaved and overwrites the persisted document.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	if s.doc == nil {
		return ErrNotLoaded
	}
	now := s.clock()
	s.doc.Meta.LastSaved = &now
	data, err := document.Marshal(s.doc)
	if err == nil {
		err = s.kv.Set(ctx, localstore.KeyState, string(data))
		if err != nil {
			err = ferrors.WrapError(err, ferrors.CategoryStorage, "write local state").
				WithContext("key", localstore.KeyState).Build()
		}
	}
	s.recorder.IncStateSave(metrics.Outcome(err))
	if err != nil {
		return err
	}
	s.logger.Debug("Saved state", logfields.StoreKey(localstore.KeyState), slog.Int("bytes", len(data)))
	return nil
}

// Replace substitutes the live document wholesale and saves it.
func (s *Store) Replace(ctx context.Context, doc *document.Document) error {
	if doc == nil {
		return ferrors.ValidationError("cannot replace state with nothing").Build()
	}
	s.mu.Lock()
	s.doc = doc
	err := s.saveLocked(ctx)
	interval := doc.Settings.AutoSaveInterval()
	s.mu.Unlock()
	s.rescheduleIfChanged(ctx, interval)
	return err
}

// Mutate applies fn to the live document and saves on success. When fn fails,
// whatever it changed stays in memory and nothing is persisted.
func (s *Store) Mutate(ctx context.Context, fn func(*document.Document) error) error {
	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if err := fn(s.doc); err != nil {
		s.mu.Unlock()
		return err
	}
	err := s.saveLocked(ctx)
	interval := s.doc.Settings.AutoSaveInterval()
	s.mu.Unlock()
	s.rescheduleIfChanged(ctx, interval)
	return err
}

// Snapshot returns a deep copy of the live document, or nil before Load.
func (s *Store) Snapshot() *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil
	}
	return s.doc.Clone()
}

// Import validates raw, migrates it to the current schema and replaces the
// live document with it. Invalid input leaves the live document untouched.
func (s *Store) Import(ctx context.Context, raw []byte) (document.MigrationReport, error) {
	doc, report, err := document.ParseImport(raw, s.ids)
	if err != nil {
		return report, err
	}
	if err := s.Replace(ctx, doc); err != nil {
		return report, err
	}
	s.logger.Info("Imported state", logfields.SchemaVersion(report.From), slog.Any("applied", report.Applied))
	return report, nil
}

// Export renders the live document as pretty JSON.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNotLoaded
	}
	return document.Marshal(s.doc)
}

// RemoteConfig holds the persisted sync settings.
type RemoteConfig struct {
	URL    string
	APIKey string
}

// Configured reports whether both values are present.
func (c RemoteConfig) Configured() bool {
	return c.URL != "" && c.APIKey != ""
}

// RemoteConfig reads the persisted server URL and API key.
func (s *Store) RemoteConfig(ctx context.Context) (RemoteConfig, error) {
	var rc RemoteConfig
	var err error
	if rc.URL, _, err = s.kv.Get(ctx, localstore.KeyServerURL); err != nil {
		return rc, ferrors.WrapError(err, ferrors.CategoryStorage, "read server url").Build()
	}
	if rc.APIKey, _, err = s.kv.Get(ctx, localstore.KeyAPIKey); err != nil {
		return rc, ferrors.WrapError(err, ferrors.CategoryStorage, "read api key").Build()
	}
	return rc, nil
}

// SetRemoteURL persists the server URL.
func (s *Store) SetRemoteURL(ctx context.Context, url string) error {
	if err := s.kv.Set(ctx, localstore.KeyServerURL, strings.TrimSpace(url)); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "write server url").Build()
	}
	return nil
}

// SetAPIKey persists the API key.
func (s *Store) SetAPIKey(ctx context.Context, key string) error {
	if err := s.kv.Set(ctx, localstore.KeyAPIKey, strings.TrimSpace(key)); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryStorage, "write api key").Build()
	}
	return nil
}

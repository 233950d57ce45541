package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
)

// DefaultDebounce coalesces bursts of writes from editors.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors the configuration file and hands each successfully
// reloaded configuration to a callback. Invalid files are logged and ignored
// so the running process keeps its last good configuration.
type Watcher struct {
	configPath string
	onReload   func(*Config)
	logger     *slog.Logger
	watcher    *fsnotify.Watcher

	// Debounce is the quiet period before a reload; set before Start.
	Debounce time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	stopped  bool
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher for configPath.
func NewWatcher(configPath string, logger *slog.Logger, onReload func(*Config)) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// Resolve absolute path for consistent watching
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, ferrors.FileSystemError("failed to resolve config path").WithCause(err).Build()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.RuntimeError("failed to create file watcher").WithCause(err).Build()
	}
	return &Watcher{
		configPath: absPath,
		onReload:   onReload,
		logger:     logger,
		watcher:    w,
		Debounce:   DefaultDebounce,
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins monitoring. It watches the directory rather than the file so
// editors that replace the file by rename are still seen.
func (cw *Watcher) Start(ctx context.Context) error {
	configDir := filepath.Dir(cw.configPath)
	if err := cw.watcher.Add(configDir); err != nil {
		return ferrors.FileSystemError("failed to watch config directory").
			WithCause(err).WithContext("dir", configDir).Build()
	}
	cw.logger.Info("Starting configuration watcher", logfields.File(cw.configPath))

	reload := make(chan struct{}, 1)
	cw.wg.Add(2)
	go cw.watchLoop(ctx, reload)
	go cw.reloadLoop(ctx, reload)
	return nil
}

// Stop ends monitoring and waits for the watcher goroutines.
func (cw *Watcher) Stop() error {
	cw.mu.Lock()
	if cw.stopped {
		cw.mu.Unlock()
		return nil
	}
	cw.stopped = true
	close(cw.stopChan)
	cw.mu.Unlock()

	err := cw.watcher.Close()
	cw.wg.Wait()
	return err
}

func (cw *Watcher) watchLoop(ctx context.Context, reload chan<- struct{}) {
	defer cw.wg.Done()
	configFile := filepath.Base(cw.configPath)

	for {
		select {
		case <-ctx.Done():
			return
		case <-cw.stopChan:
			return
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != configFile {
				continue
			}
			switch {
			case event.Op.Has(fsnotify.Write), event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Rename):
				cw.logger.Debug("Config file change detected", logfields.File(event.Name), slog.String("op", event.Op.String()))
				select {
				case reload <- struct{}{}:
				default:
				}
			case event.Op.Has(fsnotify.Remove):
				cw.logger.Warn("Config file removed", logfields.File(event.Name))
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error("Config watcher error", logfields.Error(err))
		}
	}
}

// reloadLoop handles debounced configuration reloads
func (cw *Watcher) reloadLoop(ctx context.Context, reload <-chan struct{}) {
	defer cw.wg.Done()
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-cw.stopChan:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-reload:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(cw.Debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			cw.performReload()
		}
	}
}

func (cw *Watcher) performReload() {
	cfg, err := Load(cw.configPath)
	if err != nil {
		cw.logger.Error("Failed to reload configuration", logfields.File(cw.configPath), logfields.Error(err))
		return
	}
	cw.logger.Info("Configuration reloaded", logfields.File(cw.configPath))
	if cw.onReload != nil {
		cw.onReload(cfg)
	}
}

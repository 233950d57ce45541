package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/config"
	"git.home.luguber.info/inful/kaizen/internal/eventstore"
	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
	"git.home.luguber.info/inful/kaizen/internal/remotestate"
	"git.home.luguber.info/inful/kaizen/internal/server/httpserver"
	"git.home.luguber.info/inful/kaizen/internal/webhooklog"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port int `help:"Listen port (overrides config and PORT)"`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := g.LoadConfig(root)
	if err != nil {
		return err
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger := g.logger()
	if cfg.Server.APISecret == config.DefaultAPISecret {
		logger.Warn("Using the default API secret; set API_SECRET before exposing the server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	sink, closeSink, err := newSink(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	opts := httpserver.Options{Addr: cfg.Addr(), Backend: backend, Sink: sink, Logger: logger}
	if cfg.Metrics.Enabled {
		reg := metrics.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		opts.MetricsHandler = metrics.HTTPHandler(reg)
	}
	opts.Recorder = recorder

	secret := config.NewSecret(cfg.Server.APISecret)
	opts.Secret = secret.Get
	if watcher := watchSecret(ctx, root.Config, secret, logger); watcher != nil {
		defer func() { _ = watcher.Stop() }()
	}

	srv, err := httpserver.New(opts)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("Kaizen server running", slog.String("addr", srv.Addr()), logfields.Backend(backend.Name()))

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-srv.Done():
		if err != nil {
			return err
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

func newBackend(ctx context.Context, cfg *config.Config) (remotestate.Backend, error) {
	switch cfg.Server.Backend {
	case config.BackendS3:
		s3 := cfg.Server.S3
		return remotestate.NewS3Backend(ctx, remotestate.S3Config{
			Bucket:          s3.Bucket,
			Key:             s3.Key,
			Region:          s3.Region,
			Endpoint:        s3.Endpoint,
			PathStyle:       s3.PathStyle,
			AccessKeyID:     s3.AccessKeyID,
			SecretAccessKey: s3.SecretAccessKey,
		})
	case config.BackendFile, "":
		return remotestate.NewFileBackend(cfg.StatePath())
	default:
		return nil, ferrors.ConfigError("unknown state backend").WithContext("backend", cfg.Server.Backend).Build()
	}
}

// newSink builds the webhook log plus the optional event store and NATS copies.
func newSink(cfg *config.Config, logger *slog.Logger) (webhooklog.Sink, func(), error) {
	primary, err := webhooklog.NewFileLog(cfg.WebhookLogPath())
	if err != nil {
		return nil, nil, err
	}
	var extras []webhooklog.Sink
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if path := cfg.Webhooks.SQLitePath; path != "" {
		es, err := eventstore.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		extras = append(extras, webhooklog.NewEventStoreSink(es))
		closers = append(closers, func() { _ = es.Close() })
		logger.Info("Recording webhooks to event store", logfields.File(path))
	}
	if url := cfg.Webhooks.NATSURL; url != "" {
		pub, err := webhooklog.NewNATSPublisher(url, cfg.Webhooks.SubjectPrefix)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		extras = append(extras, pub)
		closers = append(closers, pub.Close)
		logger.Info("Publishing webhooks to NATS", logfields.URL(url))
	}
	return webhooklog.NewFanout(logger, primary, extras...), closeAll, nil
}

// watchSecret reloads the config file on change and rotates the API secret.
// Nothing is watched when the file does not exist.
func watchSecret(ctx context.Context, path string, secret *config.Secret, logger *slog.Logger) *config.Watcher {
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Config file not watched", logfields.File(path), logfields.Error(err))
		}
		return nil
	}
	w, err := config.NewWatcher(path, logger, func(cfg *config.Config) {
		if secret.Set(cfg.Server.APISecret) {
			logger.Info("API secret rotated")
		}
	})
	if err != nil {
		logger.Warn("Config watcher unavailable", logfields.Error(err))
		return nil
	}
	if err := w.Start(ctx); err != nil {
		logger.Warn("Config watcher unavailable", logfields.Error(err))
		return nil
	}
	return w
}

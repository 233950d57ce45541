package httpserver

import (
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/kaizen/internal/metrics"
	"git.home.luguber.info/inful/kaizen/internal/remotestate"
	"git.home.luguber.info/inful/kaizen/internal/webhooklog"
)

// Options configures the state service.
type Options struct {
	// Addr is the listen address, e.g. ":3000". Port 0 picks a free port.
	Addr string

	// Backend stores the shared state document.
	Backend remotestate.Backend

	// Sink receives every webhook delivery.
	Sink webhooklog.Sink

	// Secret returns the current shared API key. It is consulted on every
	// request so a reloaded configuration takes effect immediately.
	Secret func() string

	// Optional.
	Logger   *slog.Logger
	Recorder metrics.Recorder

	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
}

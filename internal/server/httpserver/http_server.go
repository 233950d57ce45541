// Package httpserver wires the kaizen state service: listener binding, route
// table and graceful shutdown.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	derrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
	handlers "git.home.luguber.info/inful/kaizen/internal/server/handlers"
	smw "git.home.luguber.info/inful/kaizen/internal/server/middleware"
)

const readHeaderTimeout = 10 * time.Second

// Server is the remote state service.
type Server struct {
	opts         Options
	logger       *slog.Logger
	errorAdapter *derrors.HTTPErrorAdapter

	// Handler modules
	health          *handlers.Health
	stateHandlers   *handlers.StateHandlers
	webhookHandlers *handlers.WebhookHandlers

	// middleware chain
	mchain func(route string, next http.Handler) http.Handler

	mu       sync.Mutex
	srv      *http.Server
	ln       net.Listener
	serveErr chan error
}

// New constructs a new HTTP server wiring instance.
func New(opts Options) (*Server, error) {
	if opts.Backend == nil {
		return nil, derrors.ConfigError("state backend required").Build()
	}
	if opts.Sink == nil {
		return nil, derrors.ConfigError("webhook sink required").Build()
	}
	if opts.Secret == nil {
		return nil, derrors.ConfigError("api secret required").Build()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	s := &Server{
		opts:         opts,
		logger:       opts.Logger,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
	}
	s.health = handlers.NewHealth(opts.Backend.Name())
	s.stateHandlers = handlers.NewStateHandlers(opts.Backend, opts.Logger, opts.Recorder)
	s.webhookHandlers = handlers.NewWebhookHandlers(opts.Sink, opts.Logger, opts.Recorder)
	s.mchain = smw.Chain(opts.Logger, s.errorAdapter, opts.Recorder)
	return s, nil
}

// Handler returns the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	protect := func(h http.Handler) http.Handler { return smw.RequireAPIKey(s.opts.Secret, s.errorAdapter, h) }

	mux.Handle("/api/state", s.mchain("/api/state", methods(map[string]http.Handler{
		http.MethodGet:  protect(http.HandlerFunc(s.stateHandlers.HandleGet)),
		http.MethodPost: protect(http.HandlerFunc(s.stateHandlers.HandlePost)),
	})))
	for _, source := range handlers.WebhookSources {
		route := "/webhook/" + source
		mux.Handle(route, s.mchain(route, methods(map[string]http.Handler{
			http.MethodPost: protect(s.webhookHandlers.Handler(source)),
		})))
	}
	mux.Handle("/healthz", s.mchain("/healthz", methods(map[string]http.Handler{
		http.MethodGet: s.health,
	})))
	if s.opts.MetricsHandler != nil {
		mux.Handle("/metrics", s.opts.MetricsHandler)
	}
	mux.Handle("/", s.mchain("not_found", http.HandlerFunc(notFound)))
	return mux
}

// methods dispatches by HTTP method; anything else is the plain 404.
func methods(byMethod map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := byMethod[r.Method]; ok {
			h.ServeHTTP(w, r)
			return
		}
		notFound(w, r)
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Not found"))
}

// Start binds the listener and serves in the background. Binding happens
// synchronously so an occupied port fails here rather than in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return derrors.RuntimeError("server already started").Build()
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return derrors.NetworkError("http startup failed").
			WithCause(err).
			WithContext("addr", s.opts.Addr).
			Fatal().
			Build()
	}

	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.serveErr = make(chan error, 1)
	go func(srv *http.Server, errc chan<- error) {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", logfields.Error(err))
			errc <- err
		}
		close(errc)
	}(s.srv, s.serveErr)

	s.logger.Info("Kaizen state service listening",
		slog.String("addr", ln.Addr().String()),
		logfields.Backend(s.opts.Backend.Name()))
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Done yields a serve error, if any, and closes once the server stops.
func (s *Server) Done() <-chan error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serveErr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return derrors.RuntimeError("http shutdown failed").WithCause(err).Build()
	}
	s.logger.Info("HTTP server stopped")
	return nil
}

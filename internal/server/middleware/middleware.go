// Package middleware provides HTTP middleware for logging, panic recovery and
// shared-secret authentication for the kaizen state service.
package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
	"git.home.luguber.info/inful/kaizen/internal/server/responses"
)

// HeaderAPIKey carries the shared secret on every protected request.
const HeaderAPIKey = "x-api-key"

// Chain returns a middleware wrapper that applies logging, metrics and panic
// recovery around a handler. route labels the request in metrics.
func Chain(logger *slog.Logger, adapter *errors.HTTPErrorAdapter, recorder metrics.Recorder) func(route string, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return func(route string, next http.Handler) http.Handler {
		return loggingMiddleware(logger, recorder, route, panicRecoveryMiddleware(logger, adapter, next))
	}
}

// loggingMiddleware logs method, path, status, duration, user agent, and remote addr.
func loggingMiddleware(logger *slog.Logger, recorder metrics.Recorder, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)
		recorder.IncHTTPRequest(route, wrapped.statusCode)
		recorder.ObserveRequestDuration(route, duration)
		logger.Info("HTTP request",
			logfields.Method(r.Method),
			logfields.Path(r.URL.Path),
			logfields.Status(wrapped.statusCode),
			logfields.DurationMS(float64(duration.Microseconds())/1000),
			logfields.UserAgent(r.UserAgent()),
			logfields.RemoteAddr(r.RemoteAddr))
	})
}

// panicRecoveryMiddleware recovers from panics and writes a structured error response via the HTTPErrorAdapter.
func panicRecoveryMiddleware(logger *slog.Logger, adapter *errors.HTTPErrorAdapter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("HTTP handler panic",
					slog.Any("panic", rec),
					logfields.Path(r.URL.Path),
					logfields.Method(r.Method),
					logfields.RemoteAddr(r.RemoteAddr))

				panicErr := errors.InternalError("internal server error").
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				adapter.WriteErrorResponse(w, r, panicErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// RequireAPIKey rejects requests whose x-api-key header does not equal the
// current secret. secret is read per request so a rotated key applies
// without a restart. An empty secret rejects everything.
func RequireAPIKey(secret func() string, adapter *errors.HTTPErrorAdapter, next http.Handler) http.Handler {
	unauthorized := errors.AuthError(responses.ErrUnauthorized).Build()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := secret()
		got := r.Header.Get(HeaderAPIKey)
		if want == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			adapter.WriteErrorResponse(w, r, unauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter captures status codes for logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

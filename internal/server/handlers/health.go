package handlers

import (
	"math"
	"net/http"
	"time"

	"git.home.luguber.info/inful/kaizen/internal/server/responses"
	"git.home.luguber.info/inful/kaizen/internal/version"
)

// Health answers liveness probes. It never touches the backend.
type Health struct {
	backend string
	started time.Time
	now     func() time.Time
}

// NewHealth reports backend by name and counts uptime from now.
func NewHealth(backend string) *Health {
	return &Health{backend: backend, started: time.Now(), now: time.Now}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	now := h.now()
	w.Header().Set("Cache-Control", "no-store")
	_ = writeJSON(w, http.StatusOK, responses.HealthResponse{
		Status:    "ok",
		Timestamp: now.UTC(),
		Version:   version.Version,
		Uptime:    math.Round(now.Sub(h.started).Seconds()*1000) / 1000,
		Backend:   h.backend,
	})
}

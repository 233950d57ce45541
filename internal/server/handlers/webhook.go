package handlers

import (
	"log/slog"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
	"git.home.luguber.info/inful/kaizen/internal/server/responses"
	"git.home.luguber.info/inful/kaizen/internal/webhooklog"
)

// WebhookSources lists the sink endpoints served under /webhook/.
var WebhookSources = []string{"whatsapp", "twilio-sms", "vapi", "sample", "ghl"}

// WebhookHandlers records inbound webhook deliveries.
type WebhookHandlers struct {
	sink     webhooklog.Sink
	errors   *ferrors.HTTPErrorAdapter
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

// NewWebhookHandlers constructs a new WebhookHandlers.
func NewWebhookHandlers(sink webhooklog.Sink, logger *slog.Logger, recorder metrics.Recorder) *WebhookHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &WebhookHandlers{
		sink:     sink,
		errors:   ferrors.NewHTTPErrorAdapter(logger),
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// Handler returns the handler for one source. Recording failures are logged
// and never change the acknowledgement.
func (h *WebhookHandlers) Handler(source string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if ferrors.HasCategory(err, ferrors.CategoryLimit) {
			h.errors.WriteErrorResponse(w, r, err)
			return
		}
		if err != nil {
			h.logger.Warn("webhook body read failed", logfields.Source(source), logfields.Error(err))
		}

		entry := webhooklog.NewEntry(source, r.Header, body, h.now())
		if err := h.sink.Record(r.Context(), entry); err != nil {
			h.logger.Error("Failed to write webhook log", logfields.Source(source), logfields.Error(err))
		}
		h.recorder.IncWebhook(source)
		_ = writeJSON(w, http.StatusOK, responses.ReceivedResponse{Received: true})
	}
}

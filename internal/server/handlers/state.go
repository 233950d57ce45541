package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"time"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
	"git.home.luguber.info/inful/kaizen/internal/remotestate"
	"git.home.luguber.info/inful/kaizen/internal/server/responses"
	"git.home.luguber.info/inful/kaizen/internal/webhooklog"
)

// isoMillis matches the timestamp shape browsers produce with toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// StateHandlers serves the single shared state document.
type StateHandlers struct {
	backend  remotestate.Backend
	errors   *ferrors.HTTPErrorAdapter
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

// NewStateHandlers creates state handlers over backend. A nil logger or
// recorder falls back to slog.Default and a no-op recorder.
func NewStateHandlers(backend remotestate.Backend, logger *slog.Logger, recorder metrics.Recorder) *StateHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &StateHandlers{
		backend:  backend,
		errors:   ferrors.NewHTTPErrorAdapter(logger),
		logger:   logger,
		recorder: recorder,
		now:      time.Now,
	}
}

// HandleGet returns the stored document verbatim, or {} when nothing was saved.
func (h *StateHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	data, ok, err := h.backend.Load(r.Context())
	if err != nil {
		h.errors.WriteErrorResponse(w, r, h.storageError(err, responses.ErrRead))
		return
	}
	if !ok {
		data = []byte("{}")
	}
	_ = writeRawJSON(w, http.StatusOK, data)
}

// HandlePost stores any JSON value, pretty printed with two-space indent. A
// form-encoded body is stored as an object of its fields.
func (h *StateHandlers) HandlePost(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if ferrors.HasCategory(err, ferrors.CategoryLimit) {
		h.errors.WriteErrorResponse(w, r, err)
		return
	}
	pretty, ok := prettyState(r.Header.Get("Content-Type"), body)
	if err != nil || !ok {
		h.errors.WriteErrorResponse(w, r, ferrors.ValidationError(responses.ErrMissingJSONBody).Build())
		return
	}

	err = h.backend.Save(r.Context(), pretty.Bytes())
	h.recorder.IncStateSave(metrics.Outcome(err))
	if err != nil {
		h.errors.WriteErrorResponse(w, r, h.storageError(err, responses.ErrWrite))
		return
	}

	h.logger.Debug("state saved",
		logfields.Backend(h.backend.Name()),
		logfields.ContentLength(int64(pretty.Len())))
	savedAt := h.now().UTC().Format(isoMillis)
	_ = writeJSON(w, http.StatusOK, responses.StateSavedResponse{OK: true, SavedAt: savedAt})
}

// prettyState renders a non-empty body as indented JSON.
func prettyState(contentType string, body []byte) (bytes.Buffer, bool) {
	var pretty bytes.Buffer
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return pretty, false
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/x-www-form-urlencoded" {
		form, err := json.Marshal(webhooklog.DecodeBody(contentType, body))
		if err != nil {
			return pretty, false
		}
		body = form
	}
	if json.Indent(&pretty, body, "", "  ") != nil {
		return pretty, false
	}
	return pretty, true
}

// storageError reports the backend failure itself as the cause so the client
// sees the underlying message.
func (h *StateHandlers) storageError(err error, msg string) error {
	return ferrors.WrapError(err, ferrors.CategoryStorage, msg).
		WithContext("backend", h.backend.Name()).Build()
}

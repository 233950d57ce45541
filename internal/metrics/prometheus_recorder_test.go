package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncHTTPRequest("/api/state", 200)
	pr.IncHTTPRequest("/api/state", 200)
	pr.IncHTTPRequest("/api/state", 401)
	pr.ObserveRequestDuration("/api/state", 15*time.Millisecond)
	pr.IncStateSave(OutcomeSuccess)
	pr.IncWebhook("twilio-sms")
	pr.IncAutosave(Outcome(errors.New("disk full")))

	require.InDelta(t, 2, testutil.ToFloat64(pr.httpRequests.WithLabelValues("/api/state", "200")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.webhooks.WithLabelValues("twilio-sms")), 0)
	require.InDelta(t, 1, testutil.ToFloat64(pr.autosaves.WithLabelValues(OutcomeFailure)), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, mfs, 5)
}

func TestNilRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncHTTPRequest("/", 200)
	pr.IncStateSave(OutcomeSuccess)

	var r Recorder = NoopRecorder{}
	r.IncWebhook("vapi")
}

func TestHTTPHandlerServesRegistry(t *testing.T) {
	reg := NewRegistry()
	NewPrometheusRecorder(reg).IncStateSave(OutcomeSuccess)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "kaizen_state_saves_total")
	require.Contains(t, string(body), "go_goroutines")
}

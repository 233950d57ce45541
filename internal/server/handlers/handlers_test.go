package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kaizen/internal/remotestate"
	"git.home.luguber.info/inful/kaizen/internal/webhooklog"
)

type brokenBackend struct{}

func (brokenBackend) Load(context.Context) ([]byte, bool, error) { return nil, false, errors.New("disk gone") }
func (brokenBackend) Save(context.Context, []byte) error         { return errors.New("disk full") }
func (brokenBackend) Name() string                               { return "broken" }

type brokenSink struct{}

func (brokenSink) Record(context.Context, webhooklog.Entry) error { return errors.New("no space") }

func newFileState(t *testing.T) (*StateHandlers, *remotestate.FileBackend) {
	t.Helper()
	b, err := remotestate.NewFileBackend(filepath.Join(t.TempDir(), "data", "state.json"))
	require.NoError(t, err)
	h := NewStateHandlers(b, nil, nil)
	h.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 8_000_000, time.UTC) }
	return h, b
}

func TestStateGet_EmptyWhenNeverSaved(t *testing.T) {
	h, _ := newFileState(t)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{}`, rec.Body.String())
	require.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json"))
}

func TestStatePost_StoresPrettyAndAcknowledges(t *testing.T) {
	h, b := newFileState(t)
	rec := httptest.NewRecorder()
	h.HandlePost(rec, httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader(`{"a":1,"b":[true]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true,"savedAt":"2025-03-04T05:06:07.008Z"}`, rec.Body.String())

	data, ok, err := b.Load(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}", string(data))

	rec = httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"a":1,"b":[true]}`, rec.Body.String())
}

func TestStatePost_AcceptsAnyJSONValue(t *testing.T) {
	h, b := newFileState(t)
	rec := httptest.NewRecorder()
	h.HandlePost(rec, httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader(`[1,2]`)))
	require.Equal(t, http.StatusOK, rec.Code)
	data, _, err := b.Load(t.Context())
	require.NoError(t, err)
	require.JSONEq(t, `[1,2]`, string(data))
}

func TestStatePost_StoresFormBodyAsObject(t *testing.T) {
	h, b := newFileState(t)
	req := httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader("projectName=Acme&tag=a&tag=b"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandlePost(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok, err := b.Load(t.Context())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "{\n  \"projectName\": \"Acme\",\n  \"tag\": [\n    \"a\",\n    \"b\"\n  ]\n}", string(data))
}

func TestStatePost_RejectsMissingOrInvalidBody(t *testing.T) {
	h, _ := newFileState(t)
	for _, body := range []string{"", "   ", "{nope"} {
		rec := httptest.NewRecorder()
		h.HandlePost(rec, httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		require.JSONEq(t, `{"error":"Missing JSON body"}`, rec.Body.String())
	}
}

func TestStatePost_RejectsOversizedBody(t *testing.T) {
	h, _ := newFileState(t)
	big := `{"x":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	rec := httptest.NewRecorder()
	h.HandlePost(rec, httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader(big)))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestState_BackendFailures(t *testing.T) {
	h := NewStateHandlers(brokenBackend{}, nil, nil)

	rec := httptest.NewRecorder()
	h.HandleGet(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Read error","message":"disk gone"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.HandlePost(rec, httptest.NewRequest(http.MethodPost, "/api/state", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.JSONEq(t, `{"error":"Write error","message":"disk full"}`, rec.Body.String())
}

func TestWebhook_AppendsEntryAndAcknowledges(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "webhooks.log")
	sink, err := webhooklog.NewFileLog(logPath)
	require.NoError(t, err)
	h := NewWebhookHandlers(sink, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio-sms", strings.NewReader("From=%2B1555&Body=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-api-key", "secret")
	rec := httptest.NewRecorder()
	h.Handler("twilio-sms")(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received":true}`, rec.Body.String())

	entries, err := webhooklog.ReadEntries(logPath)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "twilio-sms", entries[0].SourceName)
	require.Equal(t, webhooklog.Redacted, entries[0].Headers["x-api-key"])
	body, ok := entries[0].Body.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "+1555", body["From"])
}

func TestWebhook_SinkFailureStillAcknowledges(t *testing.T) {
	h := NewWebhookHandlers(brokenSink{}, nil, nil)
	rec := httptest.NewRecorder()
	h.Handler("vapi")(rec, httptest.NewRequest(http.MethodPost, "/webhook/vapi", strings.NewReader(`{"a":1}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received":true}`, rec.Body.String())
}

func TestHealthCheck(t *testing.T) {
	h := NewHealth("file")
	h.now = func() time.Time { return h.started.Add(time.Minute + 1500*time.Microsecond) }
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "ok", got["status"])
	require.Equal(t, "file", got["backend"])
	require.InDelta(t, 60.002, got["uptime"].(float64), 0.0005)
}

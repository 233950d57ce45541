package syncclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

type recorded struct {
	method, path, key, contentType, body string
}

type fakeServer struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	response string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		method:      r.Method,
		path:        r.URL.Path,
		key:         r.Header.Get(HeaderAPIKey),
		contentType: r.Header.Get("Content-Type"),
		body:        string(body),
	})
	status, response := f.status, f.response
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (f *fakeServer) last() recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/", "secret")
	require.NoError(t, err)
	return c
}

func TestNewRequiresURLAndKey(t *testing.T) {
	_, err := New("", "k")
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	_, err = New("http://x", " ")
	require.Error(t, err)

	c, err := New("http://x///", "k")
	require.NoError(t, err)
	require.Equal(t, "http://x//", c.BaseURL())
}

func TestPull(t *testing.T) {
	f := &fakeServer{response: `{"meta":{"projectName":"Remote"}}`}
	c := newClient(t, f)

	body, err := c.Pull(t.Context())
	require.NoError(t, err)
	require.JSONEq(t, f.response, string(body))
	req := f.last()
	require.Equal(t, http.MethodGet, req.method)
	require.Equal(t, "/api/state", req.path)
	require.Equal(t, "secret", req.key)
}

func TestPullEmptyRemote(t *testing.T) {
	c := newClient(t, &fakeServer{response: `{}`})
	_, err := c.Pull(t.Context())
	require.ErrorIs(t, err, ErrRemoteEmpty)
}

func TestPushReturnsAck(t *testing.T) {
	f := &fakeServer{response: `{"ok":true,"savedAt":"2025-01-02T03:04:05.678Z"}`}
	c := newClient(t, f)

	ack, err := c.Push(t.Context(), []byte(`{"a":1}`))
	require.NoError(t, err)
	require.True(t, ack.OK)
	require.Equal(t, 2025, ack.SavedAt.Year())

	req := f.last()
	require.Equal(t, http.MethodPost, req.method)
	require.Equal(t, "application/json", req.contentType)
	require.JSONEq(t, `{"a":1}`, req.body)
}

func TestStatusErrors(t *testing.T) {
	f := &fakeServer{status: http.StatusUnauthorized, response: `{"error":"Unauthorized: missing or invalid x-api-key"}`}
	c := newClient(t, f)

	_, err := c.Pull(t.Context())
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryAuth))
	require.Contains(t, err.Error(), "401")
	require.Contains(t, err.Error(), "Unauthorized")

	f.mu.Lock()
	f.status, f.response = http.StatusInternalServerError, ""
	f.mu.Unlock()
	_, err = c.Push(t.Context(), []byte(`{}`))
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryRemote))
	require.Contains(t, err.Error(), "Internal Server Error")
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, "k")
	require.NoError(t, err)
	_, err = c.Pull(t.Context())
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))
}

func TestSendWebhookTest(t *testing.T) {
	f := &fakeServer{response: `{"received":true}`}
	c := newClient(t, f)

	require.NoError(t, c.SendWebhookTest(t.Context(), "twilio"))
	req := f.last()
	require.Equal(t, "/webhook/twilio-sms", req.path)
	require.Equal(t, "application/x-www-form-urlencoded", req.contentType)
	require.Contains(t, req.body, "MessageSid=SM123")

	require.NoError(t, c.SendWebhookTest(t.Context(), "wa"))
	require.Equal(t, "/webhook/whatsapp", f.last().path)

	require.Equal(t, []string{"ghl", "twilio", "vapi", "wa", "webhook"}, WebhookKinds())

	err := c.SendWebhookTest(t.Context(), "fax")
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

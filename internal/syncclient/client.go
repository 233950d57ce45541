// Package syncclient talks to the remote state service: it pulls and pushes
// whole state documents and sends sample payloads to the webhook sink.
//
// There is no retry or backoff. Every failure is surfaced once, classified,
// with a message meant for a person.
package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
)

// HeaderAPIKey carries the shared secret on every request.
const HeaderAPIKey = "x-api-key"

const maxResponseBytes = 16 << 20

// ErrRemoteEmpty is returned by Pull when the server has never stored a document.
var ErrRemoteEmpty = errors.New("remote has no saved state")

// Ack is the server's acknowledgement of a push.
type Ack struct {
	OK      bool      `json:"ok"`
	SavedAt time.Time `json:"savedAt"`
}

// Client is a sync client bound to one server and key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New validates the connection settings. A trailing slash on baseURL is dropped.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil, ferrors.ValidationError("provide server URL and API key").UserAction().Build()
	}
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Pull fetches the stored document. A server that has never been written to
// answers {} and Pull reports ErrRemoteEmpty.
func (c *Client) Pull(ctx context.Context) ([]byte, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/state", "", nil)
	if err != nil {
		return nil, err
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil && len(probe) == 0 {
		return nil, ferrors.NotFoundError("remote state is empty").WithCause(ErrRemoteEmpty).Build()
	}
	return body, nil
}

// Push overwrites the remote document with doc.
func (c *Client) Push(ctx context.Context, doc []byte) (Ack, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/state", "application/json", doc)
	if err != nil {
		return Ack{}, err
	}
	var ack Ack
	if err := json.Unmarshal(body, &ack); err != nil {
		return Ack{}, ferrors.RemoteError("unexpected response from server").WithCause(err).Build()
	}
	return ack, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, payload []byte) ([]byte, error) {
	url := c.baseURL + path
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, ferrors.ValidationError("invalid server URL").WithCause(err).WithContext("url", url).Build()
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, ferrors.NetworkError("could not reach server").WithCause(err).WithContext("url", url).Build()
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, ferrors.NetworkError("could not read server response").WithCause(err).WithContext("url", url).Build()
	}
	c.logger.Debug("Server request",
		logfields.Method(method), logfields.URL(url), logfields.Status(resp.StatusCode),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, body, url)
	}
	return body, nil
}

func statusError(status int, body []byte, url string) error {
	text := strings.TrimSpace(string(body))
	if text == "" {
		text = http.StatusText(status)
	}
	cause := fmt.Errorf("%d %s", status, text)
	b := ferrors.RemoteError("server rejected the request")
	if status == http.StatusUnauthorized {
		b = ferrors.AuthError("server rejected the API key")
	}
	return b.WithCause(cause).WithContext("status", status).WithContext("url", url).Build()
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/metrics"
)

type countingRecorder struct {
	metrics.NoopRecorder
	codes map[int]int
}

func (c *countingRecorder) IncHTTPRequest(_ string, code int) { c.codes[code]++ }

func TestRequireAPIKey(t *testing.T) {
	secret := "s3cret"
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RequireAPIKey(func() string { return secret }, errors.NewHTTPErrorAdapter(nil), ok)

	for key, want := range map[string]int{
		"":        http.StatusUnauthorized,
		"s3cre":   http.StatusUnauthorized,
		"S3CRET":  http.StatusUnauthorized,
		"s3cret":  http.StatusNoContent,
		"s3cret ": http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		if key != "" {
			req.Header.Set(HeaderAPIKey, key)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, want, rec.Code, "key %q", key)
		if want == http.StatusUnauthorized {
			require.JSONEq(t, `{"error":"Unauthorized: missing or invalid x-api-key"}`, rec.Body.String())
		}
	}

	secret = ""
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set(HeaderAPIKey, "")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChain_RecoversPanicsAndRecordsStatus(t *testing.T) {
	rec := &countingRecorder{codes: map[int]int{}}
	chain := Chain(nil, errors.NewHTTPErrorAdapter(nil), rec)
	h := chain("state", http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/state", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "internal server error")
	require.Equal(t, 1, rec.codes[http.StatusInternalServerError])
}

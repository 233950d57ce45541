package errors

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// HTTPErrorAdapter turns classified errors into the JSON error bodies of the
// state service: {"error": <message>, "message": <cause>}. Context values are
// logged, never sent to the client.
type HTTPErrorAdapter struct {
	logger *slog.Logger
}

// NewHTTPErrorAdapter creates an adapter. A nil logger means slog.Default().
func NewHTTPErrorAdapter(logger *slog.Logger) *HTTPErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPErrorAdapter{logger: logger}
}

// HTTPErrorBody is the wire shape of every error response.
type HTTPErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// StatusCodeFor maps an error's category to a status code. Unclassified
// errors are 500.
func (a *HTTPErrorAdapter) StatusCodeFor(err error) int {
	if err == nil {
		return http.StatusOK
	}
	c, ok := AsClassified(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch c.Category() {
	case CategoryValidation, CategoryConfig, CategorySchema:
		return http.StatusBadRequest
	case CategoryLimit:
		return http.StatusRequestEntityTooLarge
	case CategoryAuth:
		return http.StatusUnauthorized
	case CategoryNotFound:
		return http.StatusNotFound
	case CategoryNetwork, CategoryRemote:
		return http.StatusBadGateway
	case CategoryRuntime:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Body builds the response body for err.
func (a *HTTPErrorAdapter) Body(err error) HTTPErrorBody {
	if c, ok := AsClassified(err); ok {
		body := HTTPErrorBody{Error: c.Message()}
		if c.Cause() != nil {
			body.Message = c.Cause().Error()
		}
		return body
	}
	return HTTPErrorBody{Error: err.Error()}
}

// WriteErrorResponse writes err as JSON. Server side failures are logged at
// error level, client mistakes at debug.
func (a *HTTPErrorAdapter) WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		w.WriteHeader(http.StatusOK)
		return
	}
	status := a.StatusCodeFor(err)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if jerr := enc.Encode(a.Body(err)); jerr != nil {
		buf.Reset()
		buf.WriteString(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())

	a.log(r, status, err)
}

func (a *HTTPErrorAdapter) log(r *http.Request, status int, err error) {
	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		slog.Int("status", status),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	}
	msg := err.Error()
	if c, ok := AsClassified(err); ok {
		msg = c.Message()
		attrs = append(attrs, slog.String("category", string(c.Category())))
		if c.Cause() != nil {
			attrs = append(attrs, slog.String("error", c.Cause().Error()))
		}
		for k, v := range c.Context() {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	a.logger.LogAttrs(r.Context(), level, msg, attrs...)
}

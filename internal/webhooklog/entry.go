// Package webhooklog records inbound webhook deliveries. Every delivery becomes
// one JSON line in an append-only log; optional sinks (an SQLite index, a NATS
// subject) receive the same entry.
package webhooklog

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Redacted replaces the shared secret in logged headers.
const Redacted = "[redacted]"

// Entry is one logged delivery.
type Entry struct {
	Timestamp  time.Time         `json:"timestamp"`
	SourceName string            `json:"sourceName"`
	Headers    map[string]string `json:"headers"`
	Body       any               `json:"body"`
}

// NewEntry builds an entry from request parts. Header names are lower-cased
// and repeated values joined with ", ". The x-api-key value is redacted.
func NewEntry(source string, header http.Header, body []byte, now time.Time) Entry {
	headers := make(map[string]string, len(header))
	for name, values := range header {
		key := strings.ToLower(name)
		if key == "x-api-key" {
			headers[key] = Redacted
			continue
		}
		headers[key] = strings.Join(values, ", ")
	}
	return Entry{
		Timestamp:  now,
		SourceName: source,
		Headers:    headers,
		Body:       DecodeBody(header.Get("Content-Type"), body),
	}
}

// DecodeBody interprets a payload the way the sink logs it: JSON bodies as
// values, form bodies as field maps, anything else (including malformed JSON)
// as the raw string. An empty body is an empty object.
func DecodeBody(contentType string, raw []byte) any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return string(raw)
	}
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return string(raw)
		}
		return v
	case mediaType == "application/x-www-form-urlencoded":
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return string(raw)
		}
		form := make(map[string]any, len(values))
		for k, vs := range values {
			if len(vs) == 1 {
				form[k] = vs[0]
			} else {
				form[k] = vs
			}
		}
		return form
	default:
		return string(raw)
	}
}

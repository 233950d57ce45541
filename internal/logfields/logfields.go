package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyMethod     = "method"
	KeyPath       = "path"
	KeyStatus     = "status"
	KeyUserAgent  = "user_agent"
	KeyRemoteAddr = "remote_addr"
	KeyRequestID  = "request_id"
	KeyDurationMS = "duration_ms"
	KeyContentLen = "content_length"
	KeySource     = "source"
	KeyStoreKey   = "store_key"
	KeyBackend    = "backend"
	KeyJobID      = "job_id"
	KeyURL        = "url"
	KeyFile       = "file"
	KeyDay        = "day"
	KeyTaskID     = "task_id"
	KeyVersion    = "schema_version"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Method(m string) slog.Attr        { return slog.String(KeyMethod, m) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Status(code int) slog.Attr        { return slog.Int(KeyStatus, code) }
func UserAgent(ua string) slog.Attr    { return slog.String(KeyUserAgent, ua) }
func RemoteAddr(addr string) slog.Attr { return slog.String(KeyRemoteAddr, addr) }
func RequestID(id string) slog.Attr    { return slog.String(KeyRequestID, id) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func ContentLength(n int64) slog.Attr  { return slog.Int64(KeyContentLen, n) }
func Source(name string) slog.Attr     { return slog.String(KeySource, name) }
func StoreKey(k string) slog.Attr      { return slog.String(KeyStoreKey, k) }
func Backend(name string) slog.Attr    { return slog.String(KeyBackend, name) }
func JobID(id string) slog.Attr        { return slog.String(KeyJobID, id) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func File(f string) slog.Attr          { return slog.String(KeyFile, f) }
func Day(d int) slog.Attr              { return slog.Int(KeyDay, d) }
func TaskID(id string) slog.Attr       { return slog.String(KeyTaskID, id) }
func SchemaVersion(v string) slog.Attr { return slog.String(KeyVersion, v) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

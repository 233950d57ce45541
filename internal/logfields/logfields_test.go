package logfields

import (
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Path", KeyPath, "/api/state", Path("/api/state")},
		{"UserAgent", KeyUserAgent, "ua", UserAgent("ua")},
		{"RemoteAddr", KeyRemoteAddr, "1.2.3.4", RemoteAddr("1.2.3.4")},
		{"RequestID", KeyRequestID, "rid", RequestID("rid")},
		{"Source", KeySource, "twilio-sms", Source("twilio-sms")},
		{"StoreKey", KeyStoreKey, "kaizen_state_v1", StoreKey("kaizen_state_v1")},
		{"Backend", KeyBackend, "file", Backend("file")},
		{"JobID", KeyJobID, "j1", JobID("j1")},
		{"URL", KeyURL, "http://example", URL("http://example")},
		{"File", KeyFile, "state.json", File("state.json")},
		{"TaskID", KeyTaskID, "d1t0-abc", TaskID("d1t0-abc")},
		{"SchemaVersion", KeyVersion, "1.0.0", SchemaVersion("1.0.0")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

// TestNumericHelpers verifies keys for numeric & float helpers.
func TestNumericHelpers(t *testing.T) {
	if v := Status(200); v.Key != KeyStatus {
		t.Fatalf("Status key mismatch: %s", v.Key)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS {
		t.Fatalf("DurationMS key mismatch: %s", v.Key)
	}
	if v := ContentLength(1234); v.Key != KeyContentLen {
		t.Fatalf("ContentLength key mismatch: %s", v.Key)
	}
	if v := Day(7); v.Key != KeyDay || v.Value.Int64() != 7 {
		t.Fatalf("Day mismatch: %v", v)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errTest{})
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}

type errTest struct{}

func (e errTest) Error() string { return "err-test" }

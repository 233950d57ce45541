package metrics

import "time"

// Outcome labels used by the save and autosave counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder defines the observability hooks. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncHTTPRequest(route string, status int)
	ObserveRequestDuration(route string, d time.Duration)
	IncStateSave(outcome string)
	IncWebhook(source string)
	IncAutosave(outcome string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncHTTPRequest(string, int)                   {}
func (NoopRecorder) ObserveRequestDuration(string, time.Duration) {}
func (NoopRecorder) IncStateSave(string)                          {}
func (NoopRecorder) IncWebhook(string)                            {}
func (NoopRecorder) IncAutosave(string)                           {}

// Outcome maps an error to OutcomeSuccess or OutcomeFailure.
func Outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

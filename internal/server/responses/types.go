// Package responses defines the JSON payloads written by the kaizen HTTP
// handlers. Error bodies come from foundation/errors.HTTPErrorAdapter.
package responses

import "time"

// Fixed error strings returned by the state service.
const (
	ErrUnauthorized    = "Unauthorized: missing or invalid x-api-key"
	ErrMissingJSONBody = "Missing JSON body"
	ErrRead            = "Read error"
	ErrWrite           = "Write error"
	ErrPayloadTooLarge = "Payload too large"
)

// StateSavedResponse acknowledges POST /api/state.
type StateSavedResponse struct {
	OK      bool   `json:"ok"`
	SavedAt string `json:"savedAt"`
}

// ReceivedResponse acknowledges a webhook delivery.
type ReceivedResponse struct {
	Received bool `json:"received"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Backend   string    `json:"backend,omitempty"`
}

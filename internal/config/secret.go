package config

import "sync/atomic"

// Secret holds the API secret shared between the config watcher and the
// request path.
type Secret struct {
	v atomic.Value
}

// NewSecret returns a holder initialised to s.
func NewSecret(s string) *Secret {
	h := &Secret{}
	h.v.Store(s)
	return h
}

// Get returns the current secret.
func (h *Secret) Get() string {
	s, _ := h.v.Load().(string)
	return s
}

// Set replaces the secret and reports whether it changed.
func (h *Secret) Set(s string) bool {
	return h.v.Swap(s) != s
}

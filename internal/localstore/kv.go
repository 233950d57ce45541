// Package localstore provides the client's local keyed storage: a small set of
// string values addressed by fixed keys, each overwritten as a whole.
package localstore

import (
	"context"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

// Fixed keys used by the client.
const (
	KeyState     = "kaizen_state_v1"
	KeyServerURL = "kaizen_server_url"
	KeyAPIKey    = "kaizen_api_key"
)

// KV is a string key/value store. Get reports ok=false for absent keys.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var (
	// ErrOpenFailed indicates the database could not be opened.
	ErrOpenFailed = ferrors.StorageError("could not open local store").Build()
	// ErrClosed is returned by operations on a closed store.
	ErrClosed = ferrors.StorageError("local store is closed").Build()
)

// Package remotestate stores the single state document held by the remote
// state service. Backends store bytes exactly as given; the service decides
// the on-disk format.
package remotestate

import "context"

// Backend persists one document.
type Backend interface {
	// Load returns the stored bytes, or ok=false when nothing was ever saved.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Save overwrites the stored document unconditionally.
	Save(ctx context.Context, data []byte) error
	// Name identifies the backend in logs.
	Name() string
}

package eventstore

import (
	"git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

// Sentinel errors for event store operations.
var (
	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StorageError("could not open event store database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.StorageError("failed to initialize event store schema").Build()

	// ErrEventAppendFailed indicates appending an event failed.
	ErrEventAppendFailed = errors.StorageError("failed to append event to store").Build()

	// ErrEventQueryFailed indicates querying events failed.
	ErrEventQueryFailed = errors.StorageError("failed to query events from store").Build()
)

// wrap keeps the sentinel's category and message, so errors.Is still matches
// it through ClassifiedError.Is, and attaches the driver error as the cause.
func wrap(sentinel *errors.ClassifiedError, err error) error {
	return errors.StorageError(sentinel.Message()).WithCause(err).Build()
}

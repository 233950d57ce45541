package document

import (
	"errors"
	"fmt"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

var (
	// ErrNotFound is wrapped by every lookup failure in this package.
	ErrNotFound = errors.New("not found")
	// ErrNewerSchema is returned for documents written by a newer schema.
	ErrNewerSchema = errors.New("document schema is newer than supported")
)

func notFound(kind, id string) error {
	return ferrors.NotFoundError(fmt.Sprintf("%s %q", kind, id)).
		WithCause(ErrNotFound).
		WithContext("id", id).
		Build()
}

func invalid(msg string) *ferrors.ErrorBuilder {
	return ferrors.ValidationError(msg)
}

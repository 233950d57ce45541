package remotestate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
)

// FileBackend keeps the document in a single file.
//
// Saves go through a temporary file and a rename, so readers never see a torn
// document. There is no locking: concurrent saves race and the last rename wins.
type FileBackend struct {
	path string
}

// NewFileBackend creates the parent directory of path if needed.
func NewFileBackend(path string) (*FileBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ferrors.FileSystemError("failed to create state directory").
			WithCause(err).WithContext("path", path).Build()
	}
	return &FileBackend{path: path}, nil
}

// Path returns the state file location.
func (b *FileBackend) Path() string { return b.path }

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Load(_ context.Context) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ferrors.FileSystemError("failed to read state file").
			WithCause(err).WithContext("path", b.path).Build()
	}
	return data, true, nil
}

func (b *FileBackend) Save(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".state-*.json")
	if err != nil {
		return ferrors.FileSystemError("failed to create temporary state file").
			WithCause(err).WithContext("path", b.path).Build()
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmpName)
		return ferrors.FileSystemError("failed to write state file").
			WithCause(err).WithContext("path", b.path).Build()
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return ferrors.FileSystemError("failed to replace state file").
			WithCause(err).WithContext("path", b.path).Build()
	}
	return nil
}

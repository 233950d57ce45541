package webhooklog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	ferrors "git.home.luguber.info/inful/kaizen/internal/foundation/errors"
	"git.home.luguber.info/inful/kaizen/internal/logfields"
)

// Sink receives webhook entries.
type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// FileLog appends entries as JSON lines.
type FileLog struct {
	path string
	mu   sync.Mutex
}

// NewFileLog creates the log directory if needed. The file itself is created
// on the first write.
func NewFileLog(path string) (*FileLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ferrors.FileSystemError("failed to create webhook log directory").
			WithCause(err).WithContext("path", path).Build()
	}
	return &FileLog{path: path}, nil
}

// Path returns the log location.
func (l *FileLog) Path() string { return l.path }

// Record appends one line.
func (l *FileLog) Record(_ context.Context, e Entry) error {
	line, err := json.Marshal(e)
	if err != nil {
		return ferrors.InternalError("failed to encode webhook entry").WithCause(err).Build()
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ferrors.FileSystemError("failed to open webhook log").WithCause(err).WithContext("path", l.path).Build()
	}
	_, werr := f.Write(line)
	cerr := f.Close()
	if err := errors.Join(werr, cerr); err != nil {
		return ferrors.FileSystemError("failed to write webhook log").WithCause(err).WithContext("path", l.path).Build()
	}
	return nil
}

// Fanout records to a primary sink and then to extra sinks. Only the primary
// sink's error is returned; extra sink failures are logged.
type Fanout struct {
	primary Sink
	extras  []Sink
	logger  *slog.Logger
}

// NewFanout combines sinks. A nil logger uses slog.Default().
func NewFanout(logger *slog.Logger, primary Sink, extras ...Sink) *Fanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fanout{primary: primary, extras: extras, logger: logger}
}

func (f *Fanout) Record(ctx context.Context, e Entry) error {
	err := f.primary.Record(ctx, e)
	for _, s := range f.extras {
		if xerr := s.Record(ctx, e); xerr != nil {
			f.logger.Warn("Webhook sink failed", logfields.Source(e.SourceName), logfields.Error(xerr))
		}
	}
	return err
}

// ReadEntries reads every entry of a log. A missing file yields no entries.
// Lines that do not decode are skipped.
func ReadEntries(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ferrors.FileSystemError("failed to open webhook log").WithCause(err).WithContext("path", path).Build()
	}
	defer func() { _ = f.Close() }()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 8<<20)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return entries, ferrors.FileSystemError("failed to read webhook log").WithCause(err).WithContext("path", path).Build()
	}
	return entries, nil
}

// Tail returns the last n entries (all when n <= 0).
func Tail(path string, n int) ([]Entry, error) {
	entries, err := ReadEntries(path)
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, err
}

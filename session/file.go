package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileBackend persists all slots of a session in one JSON document. Writes go to a
// temporary file that is renamed over the target, so readers in other processes see
// whole documents only.
type FileBackend struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// FileOption configures a [FileBackend].
type FileOption func(*FileBackend)

// WithFileLogger sets the logger that records discarded corrupt documents.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(b *FileBackend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewFileBackend returns a backend storing the session at path. The parent directory
// is created on first write.
func NewFileBackend(path string, opts ...FileOption) *FileBackend {
	b := &FileBackend{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Path returns the session file location.
func (b *FileBackend) Path() string {
	return b.path
}

// Load implements [Backend].
func (b *FileBackend) Load(_ context.Context, slots ...Slot) (map[Slot][]byte, error) {
	b.mu.Lock()
	doc, err := b.read()
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make(map[Slot][]byte, len(slots))
	for _, slot := range slots {
		if v, ok := doc[slot]; ok {
			out[slot] = []byte(v)
		}
	}
	return out, nil
}

// Apply implements [Backend]. A document that no longer decodes is replaced, so a
// corrupt file never blocks login or logout.
func (b *FileBackend) Apply(_ context.Context, m Mutation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if errors.Is(err, errCorruptFile) {
		b.logger.Debug("corrupt session file discarded", "path", b.path, "error", err)
		doc, err = map[Slot]string{}, nil
	}
	if err != nil {
		return err
	}

	token, ok := doc[SlotToken]
	if !m.allows([]byte(token), ok) {
		return ErrTokenChanged
	}

	for _, slot := range m.Delete {
		delete(doc, slot)
	}
	for slot, v := range m.Set {
		doc[slot] = string(v)
	}

	if len(doc) == 0 {
		if err := os.Remove(b.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil
	}
	return b.write(doc)
}

var errCorruptFile = errors.New("corrupt session file")

func (b *FileBackend) read() (map[Slot]string, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[Slot]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	doc := map[Slot]string{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w: %v", ErrBackendUnavailable, errCorruptFile, err)
	}
	return doc, nil
}

func (b *FileBackend) write(doc map[Slot]string) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return nil
}

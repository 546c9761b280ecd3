package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DirectFileBackend is the most dependency-minimal durable backend: it
// appends one JSON line per record straight to a file. Each write is
// performed under a mutex so concurrent callers never interleave
// partial lines; this is the one backend designed for concurrent
// multi-writer use.
type DirectFileBackend struct {
	path string
	mu   sync.Mutex
}

// directRecord always carries a context object, even when empty, so
// downstream consumers can rely on the field being present.
type directRecord struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context"`
}

// NewDirectFileBackend returns a backend appending to path. The parent
// directory is created best-effort; a creation failure is swallowed
// and the write later fails naturally if the path is unusable.
func NewDirectFileBackend(path string) *DirectFileBackend {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	return &DirectFileBackend{path: path}
}

// Log appends one JSON line. The file is opened, written, flushed, and
// closed inside the mutex so the lock covers the whole append.
func (b *DirectFileBackend) Log(level Level, message string, context map[string]any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	if context == nil {
		context = map[string]any{}
	}

	line, err := json.Marshal(directRecord{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   message,
		Context:   context,
	})
	if err != nil {
		return false
	}
	line = append(line, '\n')

	b.mu.Lock()
	defer b.mu.Unlock()

	file, err := os.OpenFile(b.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return false
	}
	defer file.Close()

	if _, err := file.Write(line); err != nil {
		return false
	}
	return file.Sync() == nil
}

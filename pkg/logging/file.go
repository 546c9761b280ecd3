package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// FileBackend writes records to a file opened once at construction and
// reused for the lifetime of the backend. The format is chosen at
// construction: "json" emits one JSON record per line, anything else a
// delimited text line. If the target file cannot be opened the
// constructor fails and the backend is never registered.
type FileBackend struct {
	name   string
	file   *os.File
	format string
	mu     sync.Mutex
}

// fileRecord is the JSON shape of one persisted record.
type fileRecord struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Logger    string         `json:"logger"`
	Function  string         `json:"function"`
	Line      int            `json:"line"`
	Context   map[string]any `json:"context,omitempty"`
}

// NewFileBackend opens path for appending and returns a backend
// writing records in the given format ("json" or "simple"). name is
// the logger name recorded in each entry.
func NewFileBackend(name, path, format string) (*FileBackend, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}

	return &FileBackend{
		name:   name,
		file:   file,
		format: format,
	}, nil
}

// Log writes one record. I/O errors are reported as failure, never
// retried.
func (b *FileBackend) Log(level Level, message string, context map[string]any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	site := resolveCallSite()

	var line []byte
	if b.format == "json" {
		record := fileRecord{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Level:     level.String(),
			Message:   message,
			Logger:    b.name,
			Function:  site.Function,
			Line:      site.Line,
			Context:   context,
		}
		encoded, err := json.Marshal(record)
		if err != nil {
			return false
		}
		line = append(encoded, '\n')
	} else {
		text := fmt.Sprintf("%s | %s | %s:%s:%d - %s\n",
			time.Now().UTC().Format(time.RFC3339),
			level.Padded(), b.name, site.Function, site.Line, message)
		line = []byte(text)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.file.Write(line); err != nil {
		return false
	}
	return true
}

// Close releases the underlying file handle.
func (b *FileBackend) Close() error {
	return b.file.Close()
}

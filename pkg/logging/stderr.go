package logging

import (
	"fmt"
	"io"
	"os"
	"time"
)

// StderrBackend writes a single plain-text line per record to the
// process error stream. It has no dependency beyond that stream and is
// assumed never to fail under normal conditions; the orchestrator
// keeps it as the last entry in the backend list and never marks it
// permanently failed.
type StderrBackend struct {
	w io.Writer
}

// NewStderrBackend returns a backend writing to w, or os.Stderr when w
// is nil.
func NewStderrBackend(w io.Writer) *StderrBackend {
	if w == nil {
		w = os.Stderr
	}
	return &StderrBackend{w: w}
}

// Log writes "timestamp | LEVEL    | message [context]".
func (b *StderrBackend) Log(level Level, message string, context map[string]any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	ctx := ""
	if len(context) > 0 {
		ctx = fmt.Sprintf(" %v", context)
	}

	_, err := fmt.Fprintf(b.w, "%s | %s | %s%s\n",
		time.Now().UTC().Format(time.RFC3339), level.Padded(), message, ctx)
	return err == nil
}

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
)

// ConsoleBackend is the preferred, human-oriented backend. It renders
// records through charmbracelet/log: level-colorized, with the
// originating call site and millisecond timestamps. If the styling
// engine cannot be initialized the backend marks itself permanently
// unavailable and every Log call returns false without output; the
// orchestrator then falls through to the next backend.
type ConsoleBackend struct {
	logger    *charmlog.Logger
	available bool
}

// NewConsoleBackend creates a console backend writing to w (os.Stderr
// when nil). format selects the renderer: "console" for colorized
// text, "json" for JSON records, "simple" for logfmt.
func NewConsoleBackend(w io.Writer, format string) *ConsoleBackend {
	b := &ConsoleBackend{}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "[LOGGING SYSTEM] console backend initialization failed: %v\n", r)
			b.available = false
		}
	}()

	if w == nil {
		w = os.Stderr
	}

	formatter := charmlog.TextFormatter
	switch format {
	case "json":
		formatter = charmlog.JSONFormatter
	case "simple":
		formatter = charmlog.LogfmtFormatter
	}

	b.logger = charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000",
		Level:           charmlog.DebugLevel,
		Formatter:       formatter,
	})
	b.available = true

	return b
}

// Log renders one record. Returns false when the backend never became
// usable or when rendering fails.
func (b *ConsoleBackend) Log(level Level, message string, context map[string]any) (ok bool) {
	if b == nil || !b.available {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()

	site := resolveCallSite()
	keyvals := make([]any, 0, 2*len(context)+2)
	keyvals = append(keyvals, "caller",
		fmt.Sprintf("%s:%s:%d", filepath.Base(site.File), site.Function, site.Line))
	for key, value := range context {
		keyvals = append(keyvals, key, value)
	}

	b.logger.Log(charmLevel(level), message, keyvals...)
	return true
}

// charmLevel maps our level enum onto charmbracelet/log levels.
// CRITICAL maps to the fatal level; Logger.Log never exits the
// process, unlike the Fatal helper.
func charmLevel(level Level) charmlog.Level {
	switch level {
	case LevelDebug:
		return charmlog.DebugLevel
	case LevelInfo:
		return charmlog.InfoLevel
	case LevelWarning:
		return charmlog.WarnLevel
	case LevelError:
		return charmlog.ErrorLevel
	case LevelCritical:
		return charmlog.FatalLevel
	default:
		return charmlog.InfoLevel
	}
}

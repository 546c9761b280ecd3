package logging

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"
	"sync/atomic"
)

// Config is the construction surface for the standard backend chain.
type Config struct {
	// LogFile is the path for file-backed backends. Empty disables
	// both of them.
	LogFile string

	// ConsoleFormat selects the console renderer: "console" (default,
	// colorized), "json", or "simple".
	ConsoleFormat string

	// FileFormat selects the file record shape: "json" (default) or
	// "simple".
	FileFormat string

	// EnableSecurity applies the sanitizer to every record before any
	// backend sees it.
	EnableSecurity bool

	// Name is the logger name recorded in file entries. Defaults to
	// "poincare".
	Name string

	// ConsoleWriter overrides the console backend's writer. Defaults
	// to os.Stderr.
	ConsoleWriter io.Writer

	// ErrorWriter receives meta-diagnostics and the last-resort
	// emergency line. Defaults to os.Stderr.
	ErrorWriter io.Writer

	// Metrics, when set, counts backend attempts, failures, and
	// fallback exhaustion.
	Metrics *Metrics
}

// DefaultConfig returns the defaults used by New: colorized console,
// JSON file records, sanitizer enabled.
func DefaultConfig() Config {
	return Config{
		ConsoleFormat:  "console",
		FileFormat:     "json",
		EnableSecurity: true,
		Name:           "poincare",
	}
}

// core is the state shared between a Logger and every child created
// with With: the ordered backend list, the permanently-failed set, and
// the security toggle. Children never mutate it except through the
// mutex-guarded failure marking and the security toggle, which is
// atomic so configuration reloads can flip it while callers log.
type core struct {
	backends []NamedBackend
	secure   atomic.Bool
	metrics  *Metrics
	errorW   io.Writer

	mu     sync.Mutex
	failed map[string]bool
}

// Logger drives the fallback protocol: one record per call, attempted
// against backends in priority order, first success wins, failed
// backends evicted for the lifetime of the instance. A logging call
// never returns an error and never panics.
type Logger struct {
	core   *core
	fields map[string]any
}

// New assembles the standard backend chain: console first, then (when
// a log file is configured) the standard file backend and the direct
// file backend, and always the stderr fallback last. A backend whose
// construction fails is omitted with a best-effort meta-diagnostic,
// never aborting Logger construction.
func New(cfg Config) (*Logger, error) {
	if cfg.Name == "" {
		cfg.Name = "poincare"
	}
	if cfg.ConsoleFormat == "" {
		cfg.ConsoleFormat = "console"
	}
	if cfg.FileFormat == "" {
		cfg.FileFormat = "json"
	}
	errorW := cfg.ErrorWriter
	if errorW == nil {
		errorW = os.Stderr
	}

	var backends []NamedBackend

	backends = append(backends, NamedBackend{
		Name:    "console",
		Backend: NewConsoleBackend(cfg.ConsoleWriter, cfg.ConsoleFormat),
	})

	if cfg.LogFile != "" {
		if fb, err := NewFileBackend(cfg.Name, cfg.LogFile, cfg.FileFormat); err != nil {
			metaDiagnostic(errorW, "file backend setup failed: %v", err)
		} else {
			backends = append(backends, NamedBackend{Name: "file", Backend: fb})
		}

		backends = append(backends, NamedBackend{
			Name:    "direct_file",
			Backend: NewDirectFileBackend(cfg.LogFile),
		})
	}

	backends = append(backends, NamedBackend{
		Name:    "stderr",
		Backend: NewStderrBackend(nil),
	})

	return NewWithBackends(backends, cfg)
}

// NewWithBackends builds a Logger over an explicit ordered backend
// list. The final backend is treated as the always-available fallback
// and is never marked permanently failed. The list must not be empty.
func NewWithBackends(backends []NamedBackend, cfg Config) (*Logger, error) {
	if len(backends) == 0 {
		return nil, errors.New("all logging backends failed to initialize")
	}

	errorW := cfg.ErrorWriter
	if errorW == nil {
		errorW = os.Stderr
	}

	c := &core{
		backends: backends,
		metrics:  cfg.Metrics,
		errorW:   errorW,
		failed:   make(map[string]bool),
	}
	c.secure.Store(cfg.EnableSecurity)

	return &Logger{core: c}, nil
}

// SetSecurity switches the sanitizer on or off at runtime. The change
// applies to the logger and every child sharing its backend chain;
// records already in flight keep the setting they were sanitized
// under.
func (l *Logger) SetSecurity(enabled bool) {
	l.core.secure.Store(enabled)
}

// With returns a child logger whose records carry the given key-value
// pairs in addition to any inherited ones. The child shares the
// backend list and failed set with its parent; the parent is never
// mutated, so scoped context is safe for concurrent callers.
func (l *Logger) With(keyvals ...any) *Logger {
	scoped := contextFromKeyvals(keyvals)
	if l.core.secure.Load() {
		scoped = SanitizeContext(scoped)
	}

	fields := make(map[string]any, len(l.fields)+len(scoped))
	maps.Copy(fields, l.fields)
	maps.Copy(fields, scoped)

	return &Logger{core: l.core, fields: fields}
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(message string, keyvals ...any) {
	l.log(LevelDebug, message, contextFromKeyvals(keyvals))
}

// Info logs at INFO level.
func (l *Logger) Info(message string, keyvals ...any) {
	l.log(LevelInfo, message, contextFromKeyvals(keyvals))
}

// Warning logs at WARNING level.
func (l *Logger) Warning(message string, keyvals ...any) {
	l.log(LevelWarning, message, contextFromKeyvals(keyvals))
}

// Error logs at ERROR level.
func (l *Logger) Error(message string, keyvals ...any) {
	l.log(LevelError, message, contextFromKeyvals(keyvals))
}

// Critical logs at CRITICAL level.
func (l *Logger) Critical(message string, keyvals ...any) {
	l.log(LevelCritical, message, contextFromKeyvals(keyvals))
}

// Log logs at an explicit level with an explicit context map.
func (l *Logger) Log(level Level, message string, context map[string]any) {
	l.log(level, message, context)
}

// log runs the fallback protocol for one record.
func (l *Logger) log(level Level, message string, context map[string]any) {
	// A logging call must never propagate a failure to the caller,
	// whatever a backend or the merge below does.
	defer func() {
		_ = recover()
	}()

	if l.core.secure.Load() {
		message = SanitizeMessage(message)
		context = SanitizeContext(context)
	}

	merged := l.mergeScoped(context)
	l.core.metrics.recordAccepted(level)

	logged := false
	last := len(l.core.backends) - 1
	for i, nb := range l.core.backends {
		if l.core.isFailed(nb.Name) {
			continue
		}

		l.core.metrics.recordAttempt(nb.Name)
		if attempt(nb.Backend, level, message, merged) {
			logged = true
			break
		}

		// The final backend is the always-available fallback; a
		// failure there is escalation-worthy, not a normal fallback
		// event, so it is never evicted.
		if i != last {
			l.core.markFailed(nb.Name)
			l.core.metrics.recordFailure(nb.Name)
			metaDiagnostic(l.core.errorW, "backend %s failed, permanently disabled", nb.Name)
		}
	}

	if !logged {
		l.core.metrics.recordExhausted()
		l.core.emergency(message)
	}
}

// mergeScoped merges the logger's scoped fields under the per-call
// context; call-site keys win on conflict.
func (l *Logger) mergeScoped(context map[string]any) map[string]any {
	if len(l.fields) == 0 {
		return context
	}

	merged := make(map[string]any, len(l.fields)+len(context))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, context)
	return merged
}

// attempt invokes one backend, converting a contract-violating panic
// into a failure.
func attempt(b Backend, level Level, message string, context map[string]any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return b.Log(level, message, context)
}

func (c *core) isFailed(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed[name]
}

func (c *core) markFailed(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed[name] = true
}

// emergency is the last-resort write when every backend failed. It may
// silently no-op if the error stream is unusable but never panics.
func (c *core) emergency(message string) {
	defer func() {
		_ = recover()
	}()
	fmt.Fprintf(c.errorW, "CRITICAL: All logging failed for: %s\n", message)
}

// metaDiagnostic reports a problem of the logging system itself,
// best-effort.
func metaDiagnostic(w io.Writer, format string, args ...any) {
	defer func() {
		_ = recover()
	}()
	fmt.Fprintf(w, "[LOGGING SYSTEM] "+format+"\n", args...)
}

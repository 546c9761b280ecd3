package logging

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// scriptedBackend returns pre-programmed results and counts its calls.
type scriptedBackend struct {
	mu      sync.Mutex
	results []bool
	calls   int
}

func (b *scriptedBackend) Log(level Level, message string, context map[string]any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= len(b.results) {
		return b.results[b.calls-1]
	}
	if len(b.results) == 0 {
		return true
	}
	return b.results[len(b.results)-1]
}

func (b *scriptedBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// panickingBackend violates the backend contract.
type panickingBackend struct {
	calls int
}

func (b *panickingBackend) Log(level Level, message string, context map[string]any) bool {
	b.calls++
	panic("backend contract violation")
}

// captureBackend records every entry it accepts.
type captureBackend struct {
	mu      sync.Mutex
	entries []capturedEntry
}

type capturedEntry struct {
	level   Level
	message string
	context map[string]any
}

func (b *captureBackend) Log(level Level, message string, context map[string]any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, capturedEntry{level: level, message: message, context: context})
	return true
}

func (b *captureBackend) captured() []capturedEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]capturedEntry(nil), b.entries...)
}

func newTestLogger(t *testing.T, secure bool, backends ...NamedBackend) (*Logger, *bytes.Buffer) {
	t.Helper()
	errBuf := &bytes.Buffer{}
	logger, err := NewWithBackends(backends, Config{
		EnableSecurity: secure,
		ErrorWriter:    errBuf,
	})
	if err != nil {
		t.Fatalf("NewWithBackends() error = %v", err)
	}
	return logger, errBuf
}

func TestNewWithBackends_EmptyList(t *testing.T) {
	if _, err := NewWithBackends(nil, Config{}); err == nil {
		t.Error("NewWithBackends(nil) should fail, a logger needs at least one backend")
	}
}

func TestLogger_FirstSuccessStopsIteration(t *testing.T) {
	first := &scriptedBackend{results: []bool{true}}
	second := &scriptedBackend{results: []bool{true}}
	logger, _ := newTestLogger(t, false,
		NamedBackend{Name: "first", Backend: first},
		NamedBackend{Name: "second", Backend: second},
	)

	logger.Info("hello")

	if first.callCount() != 1 {
		t.Errorf("first backend calls = %d, want 1", first.callCount())
	}
	if second.callCount() != 0 {
		t.Errorf("second backend called %d times after first succeeded", second.callCount())
	}
}

func TestLogger_FallbackMonotonicity(t *testing.T) {
	failing := &scriptedBackend{results: []bool{false}}
	alsoFailing := &scriptedBackend{results: []bool{false}}
	fallback := &scriptedBackend{}
	logger, _ := newTestLogger(t, false,
		NamedBackend{Name: "one", Backend: failing},
		NamedBackend{Name: "two", Backend: alsoFailing},
		NamedBackend{Name: "fallback", Backend: fallback},
	)

	logger.Info("first call")
	logger.Error("second call")
	logger.Debug("third call")

	if failing.callCount() != 1 {
		t.Errorf("failed backend re-attempted: calls = %d, want 1", failing.callCount())
	}
	if alsoFailing.callCount() != 1 {
		t.Errorf("failed backend re-attempted: calls = %d, want 1", alsoFailing.callCount())
	}
	if fallback.callCount() != 3 {
		t.Errorf("fallback calls = %d, want 3", fallback.callCount())
	}
}

func TestLogger_PanickingBackendEvicted(t *testing.T) {
	violator := &panickingBackend{}
	fallback := &captureBackend{}
	logger, errBuf := newTestLogger(t, false,
		NamedBackend{Name: "violator", Backend: violator},
		NamedBackend{Name: "fallback", Backend: fallback},
	)

	logger.Info("survives a panicking backend")
	logger.Info("second record")

	if violator.calls != 1 {
		t.Errorf("panicking backend calls = %d, want 1", violator.calls)
	}
	if got := len(fallback.captured()); got != 2 {
		t.Errorf("fallback received %d records, want 2", got)
	}
	if !strings.Contains(errBuf.String(), "[LOGGING SYSTEM]") {
		t.Error("expected a meta-diagnostic for the evicted backend")
	}
}

func TestLogger_TotalFailureEmergencyLine(t *testing.T) {
	logger, errBuf := newTestLogger(t, false,
		NamedBackend{Name: "one", Backend: &scriptedBackend{results: []bool{false}}},
		NamedBackend{Name: "two", Backend: &scriptedBackend{results: []bool{false}}},
	)

	logger.Error("nothing works")

	out := errBuf.String()
	if !strings.Contains(out, "CRITICAL: All logging failed for: nothing works") {
		t.Errorf("emergency line missing from error stream: %q", out)
	}
}

func TestLogger_LastBackendNeverEvicted(t *testing.T) {
	fallback := &scriptedBackend{results: []bool{false, true}}
	logger, _ := newTestLogger(t, false,
		NamedBackend{Name: "stderr", Backend: fallback},
	)

	logger.Info("first, fails")
	logger.Info("second, succeeds")

	if fallback.callCount() != 2 {
		t.Errorf("final backend calls = %d, want 2 (must never be evicted)", fallback.callCount())
	}
}

func TestLogger_SanitizationBeforeBackends(t *testing.T) {
	capture := &captureBackend{}
	logger, _ := newTestLogger(t, true,
		NamedBackend{Name: "capture", Backend: capture},
	)

	logger.Info("Auth attempt", "username", "alice", "password", "secret123")

	entries := capture.captured()
	if len(entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(entries))
	}
	if got := entries[0].context["password"]; got != "***REDACTED***" {
		t.Errorf("password = %v, want ***REDACTED***", got)
	}
	if got := entries[0].context["username"]; got != "alice" {
		t.Errorf("username = %v, want alice", got)
	}
}

func TestLogger_NoSecretReachesAnyBackendOutput(t *testing.T) {
	consoleBuf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	logger, err := New(Config{
		ConsoleFormat:  "simple",
		EnableSecurity: true,
		ConsoleWriter:  consoleBuf,
		ErrorWriter:    errBuf,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("Auth attempt", "password", "secret123")

	for name, buf := range map[string]*bytes.Buffer{"console": consoleBuf, "error": errBuf} {
		if strings.Contains(buf.String(), "secret123") {
			t.Errorf("raw secret leaked into %s output: %q", name, buf.String())
		}
	}
	if !strings.Contains(consoleBuf.String(), "***REDACTED***") {
		t.Errorf("console output missing redaction marker: %q", consoleBuf.String())
	}
}

func TestLogger_WithScopedContext(t *testing.T) {
	capture := &captureBackend{}
	logger, _ := newTestLogger(t, false,
		NamedBackend{Name: "capture", Backend: capture},
	)

	scoped := logger.With("request_id", "req-456", "user_id", "user-789")
	scoped.Info("Processing request")
	scoped.Info("Request completed")
	logger.Info("outside the scope")

	entries := capture.captured()
	if len(entries) != 3 {
		t.Fatalf("captured %d entries, want 3", len(entries))
	}
	for i := range 2 {
		if entries[i].context["request_id"] != "req-456" {
			t.Errorf("entry %d missing scoped request_id: %v", i, entries[i].context)
		}
	}
	if _, leaked := entries[2].context["request_id"]; leaked {
		t.Error("scoped context leaked into the parent logger")
	}
}

func TestLogger_CallSiteKeysWinOverScoped(t *testing.T) {
	capture := &captureBackend{}
	logger, _ := newTestLogger(t, false,
		NamedBackend{Name: "capture", Backend: capture},
	)

	inner := logger.With("stage", "outer").With("stage", "inner", "shared", "scope")
	inner.Info("record", "shared", "call")

	entries := capture.captured()
	if len(entries) != 1 {
		t.Fatalf("captured %d entries, want 1", len(entries))
	}
	if got := entries[0].context["stage"]; got != "inner" {
		t.Errorf("inner scope should win over outer: stage = %v", got)
	}
	if got := entries[0].context["shared"]; got != "call" {
		t.Errorf("call-site key should win over scoped: shared = %v", got)
	}
}

func TestLogger_WithSanitizesScopedFields(t *testing.T) {
	capture := &captureBackend{}
	logger, _ := newTestLogger(t, true,
		NamedBackend{Name: "capture", Backend: capture},
	)

	logger.With("session_id", "abc123").Info("scoped secret")

	entries := capture.captured()
	if got := entries[0].context["session_id"]; got != "***REDACTED***" {
		t.Errorf("scoped sensitive field not redacted: %v", got)
	}
}

func TestLogger_SetSecurityAppliesToLaterRecords(t *testing.T) {
	capture := &captureBackend{}
	logger, _ := newTestLogger(t, true,
		NamedBackend{Name: "capture", Backend: capture},
	)
	scoped := logger.With("request_id", "req-1")

	scoped.Info("before", "password", "secret123")
	logger.SetSecurity(false)
	scoped.Info("after", "password", "secret123")
	logger.SetSecurity(true)
	scoped.Info("restored", "password", "secret123")

	entries := capture.captured()
	if len(entries) != 3 {
		t.Fatalf("captured %d entries, want 3", len(entries))
	}
	if got := entries[0].context["password"]; got != "***REDACTED***" {
		t.Errorf("record before toggle: password = %v, want ***REDACTED***", got)
	}
	if got := entries[1].context["password"]; got != "secret123" {
		t.Errorf("record with security off: password = %v, want raw value", got)
	}
	if got := entries[2].context["password"]; got != "***REDACTED***" {
		t.Errorf("record after re-enable: password = %v, want ***REDACTED***", got)
	}
}

func TestLogger_ConcurrentCallers(t *testing.T) {
	capture := &captureBackend{}
	logger, _ := newTestLogger(t, true,
		NamedBackend{Name: "capture", Backend: capture},
	)

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			scoped := logger.With("worker", n)
			for range 50 {
				scoped.Info("tick", "password", "hunter2")
			}
		}(i)
	}
	wg.Wait()

	entries := capture.captured()
	if len(entries) != 16*50 {
		t.Fatalf("captured %d entries, want %d", len(entries), 16*50)
	}
	for _, e := range entries {
		if e.context["password"] != "***REDACTED***" {
			t.Fatal("unsanitized record observed under concurrency")
		}
	}
}

func TestNew_NoLogFileOmitsFileBackends(t *testing.T) {
	consoleBuf := &bytes.Buffer{}
	logger, err := New(Config{ConsoleWriter: consoleBuf, ConsoleFormat: "simple"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	names := make([]string, 0, len(logger.core.backends))
	for _, nb := range logger.core.backends {
		names = append(names, nb.Name)
	}
	want := []string{"console", "stderr"}
	if len(names) != len(want) {
		t.Fatalf("backend chain = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("backend chain = %v, want %v", names, want)
		}
	}
}

func TestNew_UnopenableLogFileOmitsFileBackend(t *testing.T) {
	errBuf := &bytes.Buffer{}
	logger, err := New(Config{
		LogFile:       t.TempDir(), // a directory is not openable as a file
		ConsoleWriter: &bytes.Buffer{},
		ErrorWriter:   errBuf,
	})
	if err != nil {
		t.Fatalf("New() must not abort on a backend construction failure: %v", err)
	}

	for _, nb := range logger.core.backends {
		if nb.Name == "file" {
			t.Error("file backend registered despite open failure")
		}
	}
	if !strings.Contains(errBuf.String(), "[LOGGING SYSTEM]") {
		t.Error("expected a construction meta-diagnostic on the error stream")
	}
}

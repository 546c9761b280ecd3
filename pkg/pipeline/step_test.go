package pipeline

import (
	"errors"
	"sync"
	"testing"

	"poincare-hq/poincare/pkg/logging"
)

// recordingBackend collects every record for assertions.
type recordingBackend struct {
	mu      sync.Mutex
	records []recordedEntry
}

type recordedEntry struct {
	level   logging.Level
	message string
	context map[string]any
}

func (b *recordingBackend) Log(level logging.Level, message string, context map[string]any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, recordedEntry{level: level, message: message, context: context})
	return true
}

func (b *recordingBackend) entries() []recordedEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedEntry(nil), b.records...)
}

func newStepLogger(t *testing.T) (*logging.Logger, *recordingBackend) {
	t.Helper()
	backend := &recordingBackend{}
	logger, err := logging.NewWithBackends([]logging.NamedBackend{
		{Name: "recording", Backend: backend},
	}, logging.Config{})
	if err != nil {
		t.Fatalf("NewWithBackends() error = %v", err)
	}
	return logger, backend
}

func TestRunStep_Success(t *testing.T) {
	logger, backend := newStepLogger(t)

	got, err := RunStep(logger, "compress", func() (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("RunStep() error = %v", err)
	}
	if got != 42 {
		t.Errorf("RunStep() = %d, want 42", got)
	}

	entries := backend.entries()
	if len(entries) != 2 {
		t.Fatalf("got %d records, want start and completion", len(entries))
	}
	if entries[0].message != "Starting compress" {
		t.Errorf("first record = %q, want Starting compress", entries[0].message)
	}
	if entries[1].message != "Completed compress" {
		t.Errorf("second record = %q, want Completed compress", entries[1].message)
	}
	if _, ok := entries[1].context["execution_time_seconds"].(float64); !ok {
		t.Error("completion record missing execution_time_seconds")
	}
}

func TestRunStep_FailureWrapsStepError(t *testing.T) {
	logger, backend := newStepLogger(t)

	cause := Categorize(ErrFileAccess, errors.New("disk full"))
	_, err := RunStep(logger, "encrypt", func() (string, error) {
		return "", cause
	})
	if err == nil {
		t.Fatal("RunStep() = nil, want error")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("error %v is not a *StepError", err)
	}
	if stepErr.Step != "encrypt" {
		t.Errorf("Step = %q, want encrypt", stepErr.Step)
	}
	if !errors.Is(err, ErrFileAccess) {
		t.Error("category not visible through the step error")
	}

	entries := backend.entries()
	var sawError bool
	for _, entry := range entries {
		if entry.level == logging.LevelError && entry.message == "Failed encrypt" {
			sawError = true
		}
	}
	if !sawError {
		t.Error("no ERROR record for the failed step")
	}
}

func TestRunStep_PanicReRaised(t *testing.T) {
	logger, _ := newStepLogger(t)

	defer func() {
		r := recover()
		if r != "boom" {
			t.Errorf("recover() = %v, want original panic value", r)
		}
	}()

	_, _ = RunStep(logger, "explode", func() (int, error) {
		panic("boom")
	})
	t.Fatal("RunStep did not re-raise the panic")
}

func TestRunStepFunc(t *testing.T) {
	logger, _ := newStepLogger(t)

	if err := RunStepFunc(logger, "noop", func() error { return nil }); err != nil {
		t.Errorf("RunStepFunc() error = %v, want nil", err)
	}

	err := RunStepFunc(logger, "fail", func() error { return errors.New("nope") })
	var stepErr *StepError
	if !errors.As(err, &stepErr) || stepErr.Step != "fail" {
		t.Errorf("RunStepFunc() error = %v, want *StepError for step fail", err)
	}
}

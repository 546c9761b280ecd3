package logging

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestReadEntries_RoundTripThroughDirectFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	b := NewDirectFileBackend(path)

	b.Log(LevelInfo, "user login", map[string]any{"user_id": "u-1", "count": 3})
	b.Log(LevelError, "disk full", nil)

	entries, err := TailFile(path, 0)
	if err != nil {
		t.Fatalf("TailFile() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	first := entries[0]
	if first.Level != "INFO" || first.Message != "user login" {
		t.Errorf("unexpected entry: %+v", first)
	}
	if first.Timestamp.IsZero() {
		t.Error("timestamp not parsed")
	}
	if first.Context["user_id"] != "u-1" {
		t.Errorf("context user_id = %v", first.Context["user_id"])
	}
	if first.Context["count"] != float64(3) {
		t.Errorf("context count = %v (%T), want 3", first.Context["count"], first.Context["count"])
	}

	if entries[1].Context == nil || len(entries[1].Context) != 0 {
		t.Errorf("empty context should round-trip as an empty map: %v", entries[1].Context)
	}
}

func TestReadEntries_SkipsMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"timestamp":"2026-01-02T03:04:05Z","level":"INFO","message":"good","context":{}}`,
		`{"torn json`,
		``,
		`{"timestamp":"2026-01-02T03:04:06Z","level":"ERROR","message":"also good","context":{"nested":{"k":true}}}`,
	}, "\n")

	entries, skipped, err := ReadEntries(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadEntries() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}

	nested, ok := entries[1].Context["nested"].(map[string]any)
	if !ok {
		t.Fatalf("nested context lost: %v", entries[1].Context)
	}
	if nested["k"] != true {
		t.Errorf("nested value = %v, want true", nested["k"])
	}
}

func TestTailFile_LastN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	b := NewDirectFileBackend(path)
	for _, msg := range []string{"one", "two", "three", "four"} {
		b.Log(LevelInfo, msg, nil)
	}

	entries, err := TailFile(path, 2)
	if err != nil {
		t.Fatalf("TailFile() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Message != "three" || entries[1].Message != "four" {
		t.Errorf("tail returned %q, %q; want three, four", entries[0].Message, entries[1].Message)
	}
}

func TestTailFile_MissingFile(t *testing.T) {
	if _, err := TailFile(filepath.Join(t.TempDir(), "absent.log"), 10); err == nil {
		t.Error("TailFile() on a missing file should fail")
	}
}

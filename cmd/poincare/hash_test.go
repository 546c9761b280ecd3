package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"poincare-hq/poincare/pkg/config"
	"poincare-hq/poincare/pkg/logging"
)

func newCaptureLogger(t *testing.T) (*logging.Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger, err := logging.New(logging.Config{
		ConsoleFormat: "simple",
		ConsoleWriter: buf,
		ErrorWriter:   io.Discard,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, buf
}

func TestRecordHashRun_UnopenableLedgerWarns(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("failed to create blocking file: %v", err)
	}

	cfg := config.Default()
	cfg.Audit.Enabled = true
	// A path under a regular file cannot be created.
	cfg.Audit.SQLite.Path = filepath.Join(blocker, "audit.db")

	logger, buf := newCaptureLogger(t)
	recordHashRun(cfg, logger, "data", time.Now().UTC(), "digest", nil)

	if !strings.Contains(buf.String(), "run ledger unavailable") {
		t.Errorf("expected a warning about the unopenable ledger, got %q", buf.String())
	}
}

func TestRecordHashRun_DisabledLedgerIsSilent(t *testing.T) {
	cfg := config.Default()
	cfg.Audit.Enabled = false

	logger, buf := newCaptureLogger(t)
	recordHashRun(cfg, logger, "data", time.Now().UTC(), "digest", nil)

	if strings.Contains(buf.String(), "run ledger") {
		t.Errorf("disabled ledger should not warn, got %q", buf.String())
	}
}

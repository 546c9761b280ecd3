package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"poincare-hq/poincare/pkg/audit"
	"poincare-hq/poincare/pkg/audit/recorder"
	"poincare-hq/poincare/pkg/hashing"
	"poincare-hq/poincare/pkg/logging"
	"poincare-hq/poincare/pkg/pipeline"
)

var verifyFlags struct {
	expectedHash string
	schedule     string
}

var verifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Verify a file or directory against a recorded digest",
	Long: `Verify that a file or directory still matches its expected SHA-256
digest.

The expected digest comes from --hash, or, when omitted, from the most
recent successful run recorded for the same path in the audit ledger.

With --schedule, verification repeats on a cron schedule until
interrupted; each cycle is logged and recorded.

Examples:
  # One-shot check against an explicit digest
  poincare verify data --hash 7f83b165...

  # Check against the ledger
  poincare verify data

  # Re-check every night at 2 AM
  poincare verify data --schedule "0 2 * * *"`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyFlags.expectedHash, "hash", "", "expected SHA-256 digest")
	verifyCmd.Flags().StringVar(&verifyFlags.schedule, "schedule", "", "cron expression for repeated verification")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg, nil)
	if err != nil {
		return err
	}

	store, err := openAuditStorage(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	path := args[0]

	expected := verifyFlags.expectedHash
	if expected == "" {
		expected, err = recordedHash(cmd.Context(), store, path)
		if err != nil {
			return err
		}
	}

	if verifyFlags.schedule == "" {
		return verifyOnce(cmd.Context(), logger, store, path, expected)
	}

	if _, err := cron.ParseStandard(verifyFlags.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", verifyFlags.schedule, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(verifyFlags.schedule, func() {
		if err := verifyOnce(ctx, logger, store, path, expected); err != nil {
			logger.Error("scheduled verification failed", "path", path, "error", err.Error())
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule verification: %w", err)
	}

	// First check happens immediately; the schedule covers the rest.
	if err := verifyOnce(ctx, logger, store, path, expected); err != nil {
		return err
	}

	scheduler.Start()
	logger.Info("verification scheduler started", "path", path, "schedule", verifyFlags.schedule)

	<-ctx.Done()
	<-scheduler.Stop().Done()
	return nil
}

// recordedHash looks up the digest of the most recent successful run
// for the path.
func recordedHash(ctx context.Context, store audit.Storage, path string) (string, error) {
	if store == nil {
		return "", errors.New("no expected digest: pass --hash or enable the audit ledger")
	}

	success := true
	records, err := store.Query(ctx, &audit.Query{
		SourcePath: path,
		Success:    &success,
		Limit:      1,
	})
	if err != nil {
		return "", err
	}
	if len(records) == 0 || records[0].SourceHash == "" {
		return "", fmt.Errorf("no recorded digest for %q: pass --hash or run a pipeline over it first", path)
	}
	return records[0].SourceHash, nil
}

// verifyOnce computes the digest and compares it to the expected value,
// recording the outcome in the ledger.
func verifyOnce(ctx context.Context, logger *logging.Logger, store audit.Storage, path, expected string) error {
	started := time.Now().UTC()

	digest, err := pipeline.RunStep(logger, "verify", func() (string, error) {
		info, err := os.Stat(path)
		if err != nil {
			return "", pipeline.Categorize(pipeline.ErrFileAccess, err)
		}
		if info.IsDir() {
			return hashing.DirectoryHash(path)
		}
		return hashing.FileHash(path)
	})
	if err == nil && digest != expected {
		err = pipeline.Categorize(pipeline.ErrValidation,
			fmt.Errorf("digest mismatch for %q: got %s, want %s", path, digest, expected))
	}

	if store != nil {
		rec := recorder.New(store, nil, logger)
		if err != nil {
			rec.RecordFailure("verify", path, started, err)
		} else {
			rec.RecordSuccess("verify", path, started, &pipeline.Result{
				Duration:   time.Since(started),
				SourceHash: digest,
			})
		}
		rec.Close()
	}

	if err != nil {
		return err
	}

	logger.Info("verification passed", "path", path, "hash", digest)
	fmt.Printf("OK  %s  %s\n", path, digest)
	return nil
}

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"poincare-hq/poincare/pkg/audit/recorder"
	"poincare-hq/poincare/pkg/config"
	"poincare-hq/poincare/pkg/hashing"
	"poincare-hq/poincare/pkg/logging"
	"poincare-hq/poincare/pkg/pipeline"
)

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Print the SHA-256 digest of a file or directory",
	Long: `Print the SHA-256 digest of a file or directory tree.

Directory digests are deterministic: files contribute their relative
path and contents in sorted order.

Examples:
  poincare hash data
  poincare hash out/data.enc`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg, nil)
	if err != nil {
		return err
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return pipeline.Categorize(pipeline.ErrFileAccess, err)
	}

	started := time.Now().UTC()
	digest, err := pipeline.RunStep(logger, "hash", func() (string, error) {
		if info.IsDir() {
			return hashing.DirectoryHash(path)
		}
		return hashing.FileHash(path)
	})

	recordHashRun(cfg, logger, path, started, digest, err)

	if err != nil {
		return pipeline.Categorize(pipeline.ErrHashing, err)
	}

	fmt.Printf("%s  %s\n", digest, path)
	return nil
}

// recordHashRun writes the run to the ledger when it is enabled. An
// unopenable ledger degrades to a warning so the digest still prints.
func recordHashRun(cfg *config.Config, logger *logging.Logger, path string, started time.Time, digest string, runErr error) {
	store, err := openAuditStorage(cfg, logger)
	if err != nil {
		logger.Warning("run ledger unavailable, hash run not recorded",
			"ledger_path", cfg.Audit.SQLite.Path,
			"error", err.Error(),
		)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()

	rec := recorder.New(store, nil, logger)
	defer rec.Close()

	if runErr != nil {
		rec.RecordFailure("hash", path, started, runErr)
		return
	}
	rec.RecordSuccess("hash", path, started, &pipeline.Result{
		Duration:   time.Since(started),
		SourceHash: digest,
	})
}

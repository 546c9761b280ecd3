package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"poincare-hq/poincare/pkg/audit/recorder"
	"poincare-hq/poincare/pkg/pipeline"
)

var encryptFlags struct {
	outputName     string
	force          bool
	passphraseFile string
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt <directory>",
	Short: "Encrypt a directory into a sealed archive",
	Long: `Encrypt a directory into a single sealed archive.

The tree is archived with tar, compressed with zstd, and encrypted with
AES-GCM under an Argon2id key derived from the passphrase. The run is
recorded in the audit ledger when it is enabled.

The passphrase comes from POINCARE_PASSPHRASE or --passphrase-file.

Examples:
  # Encrypt ./data into out/data.enc
  POINCARE_PASSPHRASE=secret poincare encrypt data

  # Custom output name, overwrite an existing archive
  poincare encrypt data --out backup.enc --force`,
	Args: cobra.ExactArgs(1),
	RunE: runEncrypt,
}

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVarP(&encryptFlags.outputName, "out", "o", "data.enc", "name of the encrypted archive")
	encryptCmd.Flags().BoolVarP(&encryptFlags.force, "force", "f", false, "overwrite an existing archive")
	encryptCmd.Flags().StringVar(&encryptFlags.passphraseFile, "passphrase-file", "", "file containing the passphrase")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg, nil)
	if err != nil {
		return err
	}

	passphrase, err := readPassphrase(encryptFlags.passphraseFile)
	if err != nil {
		return err
	}

	targetDir := args[0]
	if err := os.MkdirAll(cfg.Pipeline.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	outputPath := filepath.Join(cfg.Pipeline.OutputDir, encryptFlags.outputName)

	if _, err := os.Stat(outputPath); err == nil && !encryptFlags.force {
		return fmt.Errorf("%s already exists, pass --force to overwrite", outputPath)
	}

	enc, err := pipeline.NewEncryptor(logger, cfg.Pipeline.ZstdLevel)
	if err != nil {
		return err
	}

	store, err := openAuditStorage(cfg, logger)
	if err != nil {
		return err
	}

	started := time.Now().UTC()
	logger.Info("starting encryption", "source", targetDir, "output", outputPath)

	result, runErr := enc.EncryptDirectory(cmd.Context(), targetDir, outputPath, passphrase)

	if store != nil {
		rec := recorder.New(store, nil, logger)
		if runErr != nil {
			rec.RecordFailure("encrypt", targetDir, started, runErr)
		} else {
			rec.RecordSuccess("encrypt", targetDir, started, result)
		}
		rec.Close()
		store.Close()
	}

	if runErr != nil {
		logger.Error("encryption failed", "source", targetDir, "error", runErr.Error())
		return runErr
	}

	logger.Info("encryption completed",
		"output", result.Output,
		"source_hash", result.SourceHash,
		"output_hash", result.OutputHash,
		"duration_seconds", result.Duration.Seconds(),
	)

	fmt.Printf("Encrypted %s -> %s\n", targetDir, result.Output)
	fmt.Printf("Source hash: %s\n", result.SourceHash)
	fmt.Printf("Output hash: %s\n", result.OutputHash)
	fmt.Printf("Duration:    %.3fs\n", result.Duration.Seconds())
	return nil
}

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"poincare-hq/poincare/pkg/audit/recorder"
	"poincare-hq/poincare/pkg/pipeline"
)

var decryptFlags struct {
	outputDir      string
	passphraseFile string
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <archive>",
	Short: "Decrypt a sealed archive back into a directory",
	Long: `Decrypt an archive produced by poincare encrypt and restore the
directory tree.

The passphrase comes from POINCARE_PASSPHRASE or --passphrase-file.

Examples:
  # Restore out/data.enc into out/data
  POINCARE_PASSPHRASE=secret poincare decrypt out/data.enc

  # Restore into an explicit directory
  poincare decrypt out/data.enc --out restored`,
	Args: cobra.ExactArgs(1),
	RunE: runDecrypt,
}

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVarP(&decryptFlags.outputDir, "out", "o", "", "directory to restore into (default: archive path without extension)")
	decryptCmd.Flags().StringVar(&decryptFlags.passphraseFile, "passphrase-file", "", "file containing the passphrase")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg, nil)
	if err != nil {
		return err
	}

	passphrase, err := readPassphrase(decryptFlags.passphraseFile)
	if err != nil {
		return err
	}

	archivePath := args[0]
	outputDir := decryptFlags.outputDir
	if outputDir == "" {
		outputDir = strings.TrimSuffix(archivePath, ".enc")
		if outputDir == archivePath {
			outputDir = archivePath + ".out"
		}
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
	logger.Info("starting decryption", "archive", archivePath, "output", outputDir)

	result, runErr := enc.DecryptDirectory(cmd.Context(), archivePath, outputDir, passphrase)

	if store != nil {
		rec := recorder.New(store, nil, logger)
		if runErr != nil {
			rec.RecordFailure("decrypt", archivePath, started, runErr)
		} else {
			rec.RecordSuccess("decrypt", archivePath, started, result)
		}
		rec.Close()
		store.Close()
	}

	if runErr != nil {
		logger.Error("decryption failed", "archive", archivePath, "error", runErr.Error())
		return runErr
	}

	logger.Info("decryption completed",
		"output", result.Output,
		"output_hash", result.OutputHash,
		"duration_seconds", result.Duration.Seconds(),
	)

	fmt.Printf("Decrypted %s -> %s\n", archivePath, result.Output)
	fmt.Printf("Restored tree hash: %s\n", result.OutputHash)
	fmt.Printf("Duration:           %.3fs\n", result.Duration.Seconds())
	return nil
}

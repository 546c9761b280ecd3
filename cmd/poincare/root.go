package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"poincare-hq/poincare/pkg/audit"
	"poincare-hq/poincare/pkg/audit/storage"
	"poincare-hq/poincare/pkg/config"
	"poincare-hq/poincare/pkg/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "poincare",
	Short: "Poincare - data security pipeline with resilient logging",
	Long: `Poincare encrypts directory trees into sealed archives and keeps a
verifiable ledger of every run.

It provides:
  - tar + zstd compression and AES-GCM encryption with Argon2id keys
  - SHA-256 integrity digests of inputs and outputs
  - a SQLite run ledger with scheduled retention pruning
  - multi-backend structured logging with automatic fallback`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "poincare.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configured YAML file. A missing file at the
// default location falls back to defaults so the tool works without
// any configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// buildLogger assembles the logging chain from configuration.
func buildLogger(cfg *config.Config, metrics *logging.Metrics) (*logging.Logger, error) {
	return logging.New(logging.Config{
		LogFile:        cfg.Logging.LogFile,
		ConsoleFormat:  cfg.Logging.ConsoleFormat,
		FileFormat:     cfg.Logging.FileFormat,
		EnableSecurity: cfg.Logging.SecurityEnabled(),
		Metrics:        metrics,
	})
}

// openAuditStorage opens the run ledger when it is enabled. A nil
// Storage with a nil error means the ledger is disabled.
func openAuditStorage(cfg *config.Config, logger *logging.Logger) (audit.Storage, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}

	return storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:        cfg.Audit.SQLite.Path,
		Driver:      cfg.Audit.SQLite.Driver,
		WALMode:     true,
		BusyTimeout: cfg.Audit.SQLite.BusyTimeout,
		Logger:      logger,
	})
}

// readPassphrase resolves the pipeline passphrase: the
// POINCARE_PASSPHRASE environment variable, or the file named by
// --passphrase-file.
func readPassphrase(passphraseFile string) ([]byte, error) {
	if env := os.Getenv("POINCARE_PASSPHRASE"); env != "" {
		return []byte(env), nil
	}

	if passphraseFile != "" {
		data, err := os.ReadFile(passphraseFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase file: %w", err)
		}
		passphrase := strings.TrimSpace(string(data))
		if passphrase == "" {
			return nil, errors.New("passphrase file is empty")
		}
		return []byte(passphrase), nil
	}

	return nil, errors.New("no passphrase: set POINCARE_PASSPHRASE or pass --passphrase-file")
}

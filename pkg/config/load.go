package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides of the form
// POINCARE_SECTION_FIELD (e.g. POINCARE_LOGGING_LOG_FILE).
// Environment variables take precedence over file values.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies POINCARE_* environment variables.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("POINCARE_LOGGING_LOG_FILE"); val != "" {
		cfg.Logging.LogFile = val
	}
	if val := os.Getenv("POINCARE_LOGGING_CONSOLE_FORMAT"); val != "" {
		cfg.Logging.ConsoleFormat = val
	}
	if val := os.Getenv("POINCARE_LOGGING_FILE_FORMAT"); val != "" {
		cfg.Logging.FileFormat = val
	}
	if val := os.Getenv("POINCARE_LOGGING_ENABLE_SECURITY"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.EnableSecurity = &b
		}
	}

	if val := os.Getenv("POINCARE_PIPELINE_OUTPUT_DIR"); val != "" {
		cfg.Pipeline.OutputDir = val
	}
	if val := os.Getenv("POINCARE_PIPELINE_ZSTD_LEVEL"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Pipeline.ZstdLevel = i
		}
	}
	if val := os.Getenv("POINCARE_PIPELINE_KEY_FILE"); val != "" {
		cfg.Pipeline.KeyFile = val
	}

	if val := os.Getenv("POINCARE_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("POINCARE_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}
	if val := os.Getenv("POINCARE_AUDIT_SQLITE_DRIVER"); val != "" {
		cfg.Audit.SQLite.Driver = val
	}
	if val := os.Getenv("POINCARE_AUDIT_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.SQLite.BusyTimeout = d
		}
	}
	if val := os.Getenv("POINCARE_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("POINCARE_AUDIT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.MaxRecords = i
		}
	}
	if val := os.Getenv("POINCARE_AUDIT_RETENTION_PRUNE_SCHEDULE"); val != "" {
		cfg.Audit.Retention.PruneSchedule = val
	}

	if val := os.Getenv("POINCARE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("POINCARE_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}
	if val := os.Getenv("POINCARE_METRICS_LISTEN"); val != "" {
		cfg.Metrics.Listen = val
	}
	if val := os.Getenv("POINCARE_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}
}

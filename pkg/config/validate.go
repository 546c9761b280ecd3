package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// validConsoleFormats are the accepted console renderers.
var validConsoleFormats = map[string]bool{
	"console": true,
	"json":    true,
	"simple":  true,
}

// validFileFormats are the accepted file record shapes.
var validFileFormats = map[string]bool{
	"json":   true,
	"simple": true,
}

// validSQLiteDrivers are the registered database/sql driver names.
var validSQLiteDrivers = map[string]bool{
	"sqlite":  true,
	"sqlite3": true,
}

// Validate checks the configuration for consistency. It returns the
// first problem found.
func Validate(cfg *Config) error {
	if !validConsoleFormats[cfg.Logging.ConsoleFormat] {
		return fmt.Errorf("logging.console_format: unknown format %q (expected console, json, or simple)",
			cfg.Logging.ConsoleFormat)
	}
	if !validFileFormats[cfg.Logging.FileFormat] {
		return fmt.Errorf("logging.file_format: unknown format %q (expected json or simple)",
			cfg.Logging.FileFormat)
	}

	if cfg.Pipeline.ZstdLevel < 1 || cfg.Pipeline.ZstdLevel > 19 {
		return fmt.Errorf("pipeline.zstd_level: %d out of range [1, 19]", cfg.Pipeline.ZstdLevel)
	}

	if !validSQLiteDrivers[cfg.Audit.SQLite.Driver] {
		return fmt.Errorf("audit.sqlite.driver: unknown driver %q (expected sqlite or sqlite3)",
			cfg.Audit.SQLite.Driver)
	}
	if cfg.Audit.SQLite.BusyTimeout < 0 {
		return fmt.Errorf("audit.sqlite.busy_timeout: must not be negative")
	}
	if cfg.Audit.Retention.Days < 0 {
		return fmt.Errorf("audit.retention.days: must not be negative")
	}
	if cfg.Audit.Retention.MaxRecords < 0 {
		return fmt.Errorf("audit.retention.max_records: must not be negative")
	}
	if schedule := cfg.Audit.Retention.PruneSchedule; schedule != "" {
		if _, err := cron.ParseStandard(schedule); err != nil {
			return fmt.Errorf("audit.retention.prune_schedule: invalid cron expression %q: %w", schedule, err)
		}
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Listen == "" {
			return fmt.Errorf("metrics.listen: required when metrics are enabled")
		}
		if cfg.Metrics.Path == "" {
			return fmt.Errorf("metrics.path: required when metrics are enabled")
		}
	}

	return nil
}

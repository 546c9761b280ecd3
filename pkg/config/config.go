package config

import (
	"time"
)

// Config is the root configuration for the poincare tool.
type Config struct {
	// Logging configures the resilient logging chain.
	Logging LoggingConfig `yaml:"logging"`

	// Pipeline configures the encryption pipeline.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Audit configures the run ledger.
	Audit AuditConfig `yaml:"audit"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig is the construction surface of the logger.
type LoggingConfig struct {
	// LogFile enables the file-backed backends when set.
	LogFile string `yaml:"log_file"`

	// ConsoleFormat is one of "console", "json", "simple".
	ConsoleFormat string `yaml:"console_format"`

	// FileFormat is one of "json", "simple".
	FileFormat string `yaml:"file_format"`

	// EnableSecurity toggles the sanitizer. Defaults to true; a nil
	// pointer means "not set".
	EnableSecurity *bool `yaml:"enable_security"`
}

// SecurityEnabled resolves the sanitizer toggle with its default.
func (c LoggingConfig) SecurityEnabled() bool {
	if c.EnableSecurity == nil {
		return true
	}
	return *c.EnableSecurity
}

// PipelineConfig configures the encryption pipeline.
type PipelineConfig struct {
	// OutputDir is where encrypted archives are written.
	OutputDir string `yaml:"output_dir"`

	// ZstdLevel is the zstd compression level (1 fastest, 19 best).
	ZstdLevel int `yaml:"zstd_level"`

	// KeyFile stores the derived-key salt between runs.
	KeyFile string `yaml:"key_file"`
}

// AuditConfig configures the run ledger.
type AuditConfig struct {
	// Enabled turns run recording on.
	Enabled bool `yaml:"enabled"`

	// SQLite configures the ledger database.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Retention configures pruning of old run records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig configures the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Driver selects the database/sql driver: "sqlite" (pure Go,
	// default) or "sqlite3" (cgo).
	Driver string `yaml:"driver"`

	// BusyTimeout is how long to wait when the database is locked.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig configures run-record pruning.
type RetentionConfig struct {
	// Days is the maximum record age; 0 disables age-based pruning.
	Days int `yaml:"days"`

	// MaxRecords caps the ledger size; 0 disables the cap.
	MaxRecords int `yaml:"max_records"`

	// PruneSchedule is a standard cron expression; empty disables
	// scheduled pruning.
	PruneSchedule string `yaml:"prune_schedule"`
}

// MetricsConfig configures the Prometheus endpoint served by
// `poincare run`.
type MetricsConfig struct {
	// Enabled turns metric collection on.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace"`

	// Listen is the address of the metrics HTTP listener.
	Listen string `yaml:"listen"`

	// Path is the HTTP path of the metrics handler.
	Path string `yaml:"path"`
}

package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultConsoleFormat = "console"
	DefaultFileFormat    = "json"
	DefaultOutputDir     = "out"
	DefaultZstdLevel     = 3
	DefaultSQLitePath    = "data/audit.db"
	DefaultSQLiteDriver  = "sqlite"
	DefaultBusyTimeout   = 5 * time.Second
	DefaultNamespace     = "poincare"
	DefaultMetricsListen = "127.0.0.1:9190"
	DefaultMetricsPath   = "/metrics"
)

// ApplyDefaults fills unset fields with their defaults. Explicitly set
// values are never overwritten.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.ConsoleFormat == "" {
		cfg.Logging.ConsoleFormat = DefaultConsoleFormat
	}
	if cfg.Logging.FileFormat == "" {
		cfg.Logging.FileFormat = DefaultFileFormat
	}
	if cfg.Logging.EnableSecurity == nil {
		enabled := true
		cfg.Logging.EnableSecurity = &enabled
	}

	if cfg.Pipeline.OutputDir == "" {
		cfg.Pipeline.OutputDir = DefaultOutputDir
	}
	if cfg.Pipeline.ZstdLevel == 0 {
		cfg.Pipeline.ZstdLevel = DefaultZstdLevel
	}

	if cfg.Audit.SQLite.Path == "" {
		cfg.Audit.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Audit.SQLite.Driver == "" {
		cfg.Audit.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Audit.SQLite.BusyTimeout == 0 {
		cfg.Audit.SQLite.BusyTimeout = DefaultBusyTimeout
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultNamespace
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

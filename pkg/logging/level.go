package logging

import (
	"fmt"
	"strings"
)

// Level represents the severity of a log record.
type Level int

const (
	// LevelDebug is for diagnostic detail useful during development.
	LevelDebug Level = iota

	// LevelInfo is for normal operational events.
	LevelInfo

	// LevelWarning is for recoverable anomalies.
	LevelWarning

	// LevelError is for failures of an operation.
	LevelError

	// LevelCritical is for failures that threaten the whole process.
	LevelCritical
)

// String returns the upper-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("LEVEL(%d)", int(l))
	}
}

// Padded returns the level name left-aligned in an 8-character field,
// the width used by the plain fallback line format.
func (l Level) Padded() string {
	return fmt.Sprintf("%-8s", l.String())
}

// ParseLevel parses a level name into a Level. Matching is
// case-insensitive and accepts "warn" as an alias for "warning".
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", name)
	}
}

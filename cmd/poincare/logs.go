package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"poincare-hq/poincare/pkg/logging"
)

var logsFlags struct {
	file  string
	lines int
	level string
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent records from the JSON-lines log file",
	Long: `Show the most recent records from the JSON-lines log file.

The file defaults to the configured logging.log_file. Malformed lines
are skipped; a best-effort log can legally contain a torn final line.

Examples:
  # Last 20 records from the configured log file
  poincare logs

  # Last 100 error records from an explicit file
  poincare logs --file /var/log/poincare.log --lines 100 --level error`,
	Args: cobra.NoArgs,
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().StringVar(&logsFlags.file, "file", "", "log file (default: configured log_file)")
	logsCmd.Flags().IntVarP(&logsFlags.lines, "lines", "n", 20, "number of records to show")
	logsCmd.Flags().StringVar(&logsFlags.level, "level", "", "only show records at this level or above")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := logsFlags.file
	if path == "" {
		path = cfg.Logging.LogFile
	}
	if path == "" {
		return errors.New("no log file: set logging.log_file or pass --file")
	}

	var minLevel logging.Level
	filtering := logsFlags.level != ""
	if filtering {
		minLevel, err = logging.ParseLevel(logsFlags.level)
		if err != nil {
			return err
		}
	}

	entries, err := logging.TailFile(path, logsFlags.lines)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if filtering {
			level, err := logging.ParseLevel(entry.Level)
			if err != nil || level < minLevel {
				continue
			}
		}
		fmt.Println(formatEntry(entry))
	}
	return nil
}

// formatEntry renders one record the way the plain stderr backend does.
func formatEntry(entry logging.Entry) string {
	var b strings.Builder
	b.WriteString(entry.Timestamp.UTC().Format(time.RFC3339))
	b.WriteString(" | ")
	fmt.Fprintf(&b, "%-8s", entry.Level)
	b.WriteString(" | ")
	b.WriteString(entry.Message)
	if len(entry.Context) > 0 {
		fmt.Fprintf(&b, " %v", entry.Context)
	}
	return b.String()
}

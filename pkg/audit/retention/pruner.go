// Package retention prunes old run records, by age and by count,
// optionally on a cron schedule.
package retention

import (
	"context"
	"fmt"
	"sort"
	"time"

	"poincare-hq/poincare/pkg/audit"
	"poincare-hq/poincare/pkg/logging"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain records.
	// 0 means keep records forever.
	RetentionDays int

	// MaxRecords is the maximum number of records to keep.
	// 0 means unlimited.
	MaxRecords int64

	// PruneSchedule is a cron expression for scheduled pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the
	// scheduler.
	PruneSchedule string
}

// Pruner enforces the retention policy on the run ledger.
type Pruner struct {
	storage   audit.Storage
	config    *Config
	logger    *logging.Logger
	scheduler *Scheduler
}

// NewPruner creates a retention pruner.
func NewPruner(storage audit.Storage, config *Config, logger *logging.Logger) *Pruner {
	if config == nil {
		config = &Config{}
	}

	pruner := &Pruner{
		storage: storage,
		config:  config,
		logger:  logger,
	}
	pruner.scheduler = NewScheduler(pruner, logger)

	return pruner
}

// Prune deletes records older than the retention period or exceeding
// the maximum count. Both phases can run in one call. Returns the
// total number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var totalDeleted int64

	if p.config.RetentionDays > 0 {
		deleted, err := p.pruneByAge(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by age failed: %w", err)
		}
		totalDeleted += deleted
	}

	if p.config.MaxRecords > 0 {
		deleted, err := p.pruneByCount(ctx)
		if err != nil {
			return totalDeleted, fmt.Errorf("prune by count failed: %w", err)
		}
		totalDeleted += deleted
	}

	if totalDeleted > 0 {
		p.logger.Info("run ledger pruning completed",
			"total_deleted", totalDeleted,
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	} else {
		p.logger.Debug("no run records pruned",
			"retention_days", p.config.RetentionDays,
			"max_records", p.config.MaxRecords,
		)
	}

	return totalDeleted, nil
}

// pruneByAge deletes records older than the retention period.
func (p *Pruner) pruneByAge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -p.config.RetentionDays)

	deleted, err := p.storage.Delete(ctx, &audit.Query{EndTime: &cutoff})
	if err != nil {
		return 0, audit.NewRetentionError(p.config.RetentionDays, err)
	}
	return deleted, nil
}

// pruneByCount deletes the oldest records when the total exceeds
// MaxRecords.
func (p *Pruner) pruneByCount(ctx context.Context) (int64, error) {
	count, err := p.storage.Count(ctx, &audit.Query{})
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	if count <= p.config.MaxRecords {
		return 0, nil
	}

	// Query everything oldest-first to find the cutoff record.
	records, err := p.storage.Query(ctx, &audit.Query{
		SortOrder: "asc",
		Limit:     int(count),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to query records: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})

	toDelete := len(records) - int(p.config.MaxRecords)
	if toDelete <= 0 {
		return 0, nil
	}
	if toDelete > len(records) {
		toDelete = len(records)
	}

	// Delete the surplus by ID. A timestamp cutoff would also take
	// records sharing the boundary timestamp and prune below the cap.
	ids := make([]string, toDelete)
	for i, record := range records[:toDelete] {
		ids[i] = record.ID
	}

	deleted, err := p.storage.Delete(ctx, &audit.Query{IDs: ids})
	if err != nil {
		return 0, fmt.Errorf("delete failed: %w", err)
	}
	return deleted, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}

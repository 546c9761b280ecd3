package audit

import (
	"context"
	"time"
)

// RunRecord is the ledger entry for one pipeline run. It captures what
// ran, over which paths, the integrity digests, and the outcome, so a
// run can be verified or investigated after the fact.
type RunRecord struct {
	// ID is a UUID v4 assigned at recording time.
	ID string `json:"id"`

	// Operation is the pipeline operation: "encrypt", "decrypt",
	// "hash", or "verify".
	Operation string `json:"operation"`

	// SourcePath is the input path of the run.
	SourcePath string `json:"source_path"`

	// OutputPath is the produced path, empty for read-only operations.
	OutputPath string `json:"output_path"`

	// SourceHash is the SHA-256 digest of the input.
	SourceHash string `json:"source_hash"`

	// OutputHash is the SHA-256 digest of the output.
	OutputHash string `json:"output_hash"`

	// DurationSeconds is the wall-clock time of the run.
	DurationSeconds float64 `json:"duration_seconds"`

	// Success reports whether the run completed.
	Success bool `json:"success"`

	// Error is the failure text for unsuccessful runs.
	Error string `json:"error,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// RecordedAt is when the record was written.
	RecordedAt time.Time `json:"recorded_at"`
}

// Query defines filter parameters for querying run records.
type Query struct {
	// IDs restricts the match to an explicit record set. Retention
	// pruning deletes by ID so a timestamp shared across records never
	// widens the selection.
	IDs []string `json:"ids,omitempty"`

	// Time range over StartedAt, both ends inclusive.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Operation filters by operation name.
	Operation string `json:"operation,omitempty"`

	// SourcePath filters by the run's input path.
	SourcePath string `json:"source_path,omitempty"`

	// Success filters by outcome when set.
	Success *bool `json:"success,omitempty"`

	// Pagination.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`

	// SortOrder is "asc" or "desc" over StartedAt. Default "desc".
	SortOrder string `json:"sort_order,omitempty"`
}

// Storage is the contract for run-record storage backends.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Store persists one run record.
	Store(ctx context.Context, record *RunRecord) error

	// Query retrieves records matching the filters, newest first by
	// default. An empty slice means no matches.
	Query(ctx context.Context, query *Query) ([]*RunRecord, error)

	// Count returns the number of records matching the filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes records matching the filters and returns how many
	// were removed. Retention pruning is built on this.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases the backend's resources.
	Close() error
}

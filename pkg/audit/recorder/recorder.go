// Package recorder builds and persists run records. Writes happen on a
// background worker so a pipeline run never blocks on the ledger.
package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"

	"poincare-hq/poincare/pkg/audit"
	"poincare-hq/poincare/pkg/logging"
	"poincare-hq/poincare/pkg/pipeline"
)

// Config contains configuration for the run recorder.
type Config struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 100
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  100,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes run records to storage from a background worker.
type Recorder struct {
	storage    audit.Storage
	config     *Config
	logger     *logging.Logger
	recordChan chan *audit.RunRecord
	done       chan struct{}
	closed     chan struct{}
}

// New creates a recorder over the given storage and starts its
// background worker.
func New(storage audit.Storage, config *Config, logger *logging.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = 100
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		logger:     logger,
		recordChan: make(chan *audit.RunRecord, config.AsyncBuffer),
		done:       make(chan struct{}),
		closed:     make(chan struct{}),
	}

	go r.worker()

	return r
}

// RecordSuccess records a completed run from its pipeline result.
func (r *Recorder) RecordSuccess(operation, sourcePath string, startedAt time.Time, result *pipeline.Result) string {
	record := &audit.RunRecord{
		ID:              uuid.New().String(),
		Operation:       operation,
		SourcePath:      sourcePath,
		OutputPath:      result.Output,
		SourceHash:      result.SourceHash,
		OutputHash:      result.OutputHash,
		DurationSeconds: result.Duration.Seconds(),
		Success:         true,
		StartedAt:       startedAt,
		RecordedAt:      time.Now().UTC(),
	}
	r.enqueue(record)
	return record.ID
}

// RecordFailure records a failed run.
func (r *Recorder) RecordFailure(operation, sourcePath string, startedAt time.Time, runErr error) string {
	record := &audit.RunRecord{
		ID:              uuid.New().String(),
		Operation:       operation,
		SourcePath:      sourcePath,
		DurationSeconds: time.Since(startedAt).Seconds(),
		Success:         false,
		Error:           runErr.Error(),
		StartedAt:       startedAt,
		RecordedAt:      time.Now().UTC(),
	}
	r.enqueue(record)
	return record.ID
}

// enqueue hands a record to the worker. A full buffer drops the record
// with a warning rather than blocking the pipeline.
func (r *Recorder) enqueue(record *audit.RunRecord) {
	select {
	case r.recordChan <- record:
	default:
		r.logger.Warning("run record dropped, buffer full", "record_id", record.ID)
	}
}

// worker drains the channel into storage until Close, then flushes
// whatever is still buffered.
func (r *Recorder) worker() {
	defer close(r.closed)

	for {
		select {
		case record := <-r.recordChan:
			r.store(record)
		case <-r.done:
			for {
				select {
				case record := <-r.recordChan:
					r.store(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) store(record *audit.RunRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store run record",
			"record_id", record.ID,
			"operation", record.Operation,
			"error", audit.NewRecorderError(record.ID, err).Error(),
		)
		return
	}

	r.logger.Debug("run record stored",
		"record_id", record.ID,
		"operation", record.Operation,
		"success", record.Success,
	)
}

// Close stops the worker after flushing buffered records. Records
// enqueued after Close are dropped.
func (r *Recorder) Close() {
	close(r.done)
	<-r.closed
}

// Package audit maintains the run ledger: one record per pipeline run
// with paths, digests, duration, and outcome.
//
// # Overview
//
// The package defines RunRecord, the Query filter, and the Storage
// contract. Subpackages provide the pieces:
//
//   - storage: SQLite-backed and in-memory Storage implementations
//   - recorder: builds and persists records from pipeline results
//   - retention: prunes old records, optionally on a cron schedule
//
// # Usage
//
//	store, err := storage.NewSQLiteStorage(nil)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	rec := recorder.New(store, logger)
//	rec.RecordSuccess(ctx, "encrypt", started, result)
package audit

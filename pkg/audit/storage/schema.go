package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the run ledger schema.
const Schema = `
-- Run records table
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    operation TEXT NOT NULL,

    -- Paths
    source_path TEXT NOT NULL,
    output_path TEXT,

    -- Integrity digests
    source_hash TEXT,
    output_hash TEXT,

    -- Outcome
    duration_seconds REAL NOT NULL,
    success BOOLEAN NOT NULL,
    error TEXT,

    -- Timestamps
    started_at TIMESTAMP NOT NULL,
    recorded_at TIMESTAMP NOT NULL
);

-- Indexes for common query patterns
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_operation ON runs(operation);
CREATE INDEX IF NOT EXISTS idx_runs_success ON runs(success);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InsertSchemaVersion records the schema version, once.
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version) VALUES (?);
`

// GetSchemaVersion reads the recorded schema version.
const GetSchemaVersion = `
SELECT version FROM schema_version LIMIT 1;
`

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"poincare-hq/poincare/pkg/audit"
	"poincare-hq/poincare/pkg/logging"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: "sqlite" (pure Go) or
	// "sqlite3" (cgo). Default: "sqlite".
	Driver string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Logger, when set, receives storage lifecycle diagnostics.
	Logger *logging.Logger
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		Driver:       "sqlite",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements audit.Storage over SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
}

// NewSQLiteStorage opens the database, initializes the schema, and
// enables WAL mode when configured.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite"
	}
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 10
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 5
	}

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, audit.NewStorageError(config.Driver, "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStorage{db: db, config: config}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	if config.Logger != nil {
		config.Logger.Debug("run ledger storage initialized",
			"path", config.Path,
			"driver", config.Driver,
			"wal_mode", config.WALMode,
		)
	}

	return s, nil
}

// initialize sets up the schema and pragmas.
func (s *SQLiteStorage) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return audit.NewStorageError(s.config.Driver, "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return audit.NewStorageError(s.config.Driver, "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return audit.NewStorageError(s.config.Driver, "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return audit.NewStorageError(s.config.Driver, "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return audit.NewStorageError(s.config.Driver, "get_schema_version", err)
	}
	if version != SchemaVersion {
		return audit.NewStorageError(s.config.Driver, "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// Store persists one run record.
func (s *SQLiteStorage) Store(ctx context.Context, record *audit.RunRecord) error {
	query := `
		INSERT INTO runs (
			id, operation,
			source_path, output_path,
			source_hash, output_hash,
			duration_seconds, success, error,
			started_at, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errorVal any
	if record.Error != "" {
		errorVal = record.Error
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Operation,
		record.SourcePath, record.OutputPath,
		record.SourceHash, record.OutputHash,
		record.DurationSeconds, record.Success, errorVal,
		record.StartedAt, record.RecordedAt,
	)
	if err != nil {
		return audit.NewStorageError(s.config.Driver, "store", err)
	}

	return nil
}

// Query retrieves run records matching the filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *audit.Query) ([]*audit.RunRecord, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `SELECT id, operation, source_path, output_path, source_hash, output_hash,
		duration_seconds, success, error, started_at, recorded_at FROM runs`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	order := "DESC"
	if strings.EqualFold(query.SortOrder, "asc") {
		order = "ASC"
	}
	sqlQuery += " ORDER BY started_at " + order

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "query", err)
	}
	defer rows.Close()

	records := []*audit.RunRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, audit.NewStorageError(s.config.Driver, "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, audit.NewStorageError(s.config.Driver, "query", err)
	}

	return records, nil
}

// Count returns the number of records matching the filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "count", err)
	}
	return count, nil
}

// Delete removes records matching the filters and returns how many
// were removed.
func (s *SQLiteStorage) Delete(ctx context.Context, query *audit.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM runs"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "delete", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, audit.NewStorageError(s.config.Driver, "delete", err)
	}
	return deleted, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return audit.NewStorageError(s.config.Driver, "close", err)
	}
	return nil
}

// buildWhereClause turns a Query into SQL conditions and args.
func buildWhereClause(query *audit.Query) (string, []any) {
	var conditions []string
	var args []any

	if len(query.IDs) > 0 {
		placeholders := strings.Repeat("?, ", len(query.IDs)-1) + "?"
		conditions = append(conditions, "id IN ("+placeholders+")")
		for _, id := range query.IDs {
			args = append(args, id)
		}
	}
	if query.StartTime != nil {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "started_at <= ?")
		args = append(args, *query.EndTime)
	}
	if query.Operation != "" {
		conditions = append(conditions, "operation = ?")
		args = append(args, query.Operation)
	}
	if query.SourcePath != "" {
		conditions = append(conditions, "source_path = ?")
		args = append(args, query.SourcePath)
	}
	if query.Success != nil {
		conditions = append(conditions, "success = ?")
		args = append(args, *query.Success)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans one row into a RunRecord.
func scanRow(rows *sql.Rows) (*audit.RunRecord, error) {
	var record audit.RunRecord
	var errText sql.NullString

	err := rows.Scan(
		&record.ID, &record.Operation,
		&record.SourcePath, &record.OutputPath,
		&record.SourceHash, &record.OutputHash,
		&record.DurationSeconds, &record.Success, &errText,
		&record.StartedAt, &record.RecordedAt,
	)
	if err != nil {
		return nil, err
	}

	if errText.Valid {
		record.Error = errText.String
	}
	return &record, nil
}

package evidence

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS dispatch_records (
	id TEXT PRIMARY KEY,
	request_id TEXT NOT NULL,
	timestamp INTEGER NOT NULL,
	model TEXT NOT NULL,
	key_id TEXT NOT NULL,
	status TEXT NOT NULL,
	latency_ms INTEGER NOT NULL,
	prompt_tokens INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	error TEXT
);
CREATE INDEX IF NOT EXISTS idx_dispatch_records_timestamp ON dispatch_records(timestamp DESC);
`

// SQLiteStore is a Store backed by a single SQLite database file, using the
// pure-Go modernc.org/sqlite driver so the gateway binary stays cgo-free.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if necessary) the database at path and
// ensures its schema exists.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("evidence: open database: %w", err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; one conn avoids SQLITE_BUSY churn

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("evidence: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("evidence: set busy_timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("evidence: create schema: %w", err)
	}

	logger.Info("evidence store initialized", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Record persists one dispatch outcome.
func (s *SQLiteStore) Record(r *Record) error {
	_, err := s.db.Exec(
		`INSERT INTO dispatch_records
			(id, request_id, timestamp, model, key_id, status, latency_ms, prompt_tokens, completion_tokens, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.RequestID, r.Timestamp.Unix(), r.Model, r.KeyID, r.Status, r.LatencyMillis,
		r.PromptTokens, r.CompletionTokens, nullIfEmpty(r.Error),
	)
	if err != nil {
		return fmt.Errorf("evidence: insert record: %w", err)
	}
	return nil
}

// Recent returns the most recent records, newest first, capped at limit.
func (s *SQLiteStore) Recent(limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, request_id, timestamp, model, key_id, status, latency_ms, prompt_tokens, completion_tokens, error
		 FROM dispatch_records ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("evidence: query recent: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var r Record
		var ts int64
		var errVal sql.NullString
		if err := rows.Scan(&r.ID, &r.RequestID, &ts, &r.Model, &r.KeyID, &r.Status, &r.LatencyMillis,
			&r.PromptTokens, &r.CompletionTokens, &errVal); err != nil {
			return nil, fmt.Errorf("evidence: scan record: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0)
		if errVal.Valid {
			r.Error = errVal.String
		}
		records = append(records, &r)
	}
	return records, rows.Err()
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

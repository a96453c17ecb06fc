package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// Compile-time interface check.
var _ RunStore = (*SQLiteStore)(nil)

// Run statuses recorded in the ledger.
const (
	RunOK          = "ok"
	RunConfigError = "config_error"
	RunAuthError   = "auth_error"
	RunFetchError  = "fetch_error"
	RunStoreError  = "store_error"
)

// Run is one collection cycle as recorded in the ledger.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Bucket     string    `json:"bucket"`
	Status     string    `json:"status"`
	Items      int       `json:"items"`     // rows written to the price table
	NewNames   int       `json:"new_names"` // catalog entries added
	Error      string    `json:"error,omitempty"`
}

// SQLiteStore implements RunStore backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	bucket      TEXT NOT NULL,
	status      TEXT NOT NULL,
	items       INTEGER NOT NULL DEFAULT 0,
	new_names   INTEGER NOT NULL DEFAULT 0,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS runs_started_at ON runs (started_at);
`

// NewSQLiteStore opens (or creates) a SQLite database at dbPath, creates the
// runs table if needed and returns a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordRun inserts a finished run.
func (s *SQLiteStore) RecordRun(ctx context.Context, run Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, bucket, status, items, new_names, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Bucket,
		run.Status, run.Items, run.NewNames, run.Error)
	return err
}

// ListRuns returns the most recent runs, newest first, up to limit.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, bucket, status, items, new_names, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LastSuccess returns the newest successful run, or nil if there is none.
func (s *SQLiteStore) LastSuccess(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, bucket, status, items, new_names, error
		 FROM runs WHERE status = ? ORDER BY started_at DESC LIMIT 1`, RunOK)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r                 Run
		started, finished int64
	)
	if err := sc.Scan(&r.ID, &started, &finished, &r.Bucket, &r.Status, &r.Items, &r.NewNames, &r.Error); err != nil {
		return Run{}, err
	}
	r.StartedAt = time.UnixMilli(started)
	r.FinishedAt = time.UnixMilli(finished)
	return r, nil
}

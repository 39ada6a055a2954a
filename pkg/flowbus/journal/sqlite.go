package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

var _ Journal = (*SQLiteJournal)(nil)

// SQLiteJournal persists failures to SQLite.
// It is suitable for single-process production use.
type SQLiteJournal struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteJournal opens (or creates) a journal database.
// The path should be a file path (e.g., "./failures.db") or ":memory:" for testing.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS failures (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			registration_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			event_id TEXT NOT NULL,
			handler TEXT NOT NULL,
			error TEXT NOT NULL,
			payload BLOB,
			failed_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_failures_event_type
		ON failures(event_type)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// Record implements Journal.
func (s *SQLiteJournal) Record(ctx context.Context, f *Failure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	prepare(f)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failures (id, registration_id, event_type, event_id, handler, error, payload, failed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, f.ID, f.RegistrationID, f.EventType, f.EventID, f.Handler, f.Error, f.Payload,
		f.FailedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, registration_id, event_type, event_id, handler, error, payload, failed_at FROM failures`

// List implements Journal.
func (s *SQLiteJournal) List(ctx context.Context, limit int) ([]*Failure, error) {
	return s.query(ctx, selectColumns+` ORDER BY seq LIMIT ?`, limitArg(limit))
}

// ListByEventType implements Journal.
func (s *SQLiteJournal) ListByEventType(ctx context.Context, eventType string, limit int) ([]*Failure, error) {
	return s.query(ctx, selectColumns+` WHERE event_type = ? ORDER BY seq LIMIT ?`, eventType, limitArg(limit))
}

// limitArg maps a non-positive limit to SQLite's "no limit".
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (s *SQLiteJournal) query(ctx context.Context, q string, args ...any) ([]*Failure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list failures: %w", err)
	}
	defer rows.Close()

	out := make([]*Failure, 0)
	for rows.Next() {
		f, err := scanFailure(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFailure(row scanner) (*Failure, error) {
	var f Failure
	var failedAt string
	if err := row.Scan(&f.ID, &f.RegistrationID, &f.EventType, &f.EventID,
		&f.Handler, &f.Error, &f.Payload, &failedAt); err != nil {
		return nil, fmt.Errorf("scan failure: %w", err)
	}
	f.FailedAt, _ = time.Parse(time.RFC3339Nano, failedAt)
	return &f, nil
}

// Get implements Journal.
func (s *SQLiteJournal) Get(ctx context.Context, id string) (*Failure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrClosed
	}

	f, err := scanFailure(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Delete implements Journal.
func (s *SQLiteJournal) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM failures WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete failure: %w", err)
	}
	return nil
}

// Count implements Journal.
func (s *SQLiteJournal) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM failures`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count failures: %w", err)
	}
	return n, nil
}

// Close implements Journal.
func (s *SQLiteJournal) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// Package history persists launch sessions to a small SQLite registry in the
// app data directory, so a failed launch can be diagnosed after the fact.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	port       INTEGER NOT NULL,
	pid        INTEGER NOT NULL DEFAULT 0,
	started_at TIMESTAMP NOT NULL,
	ended_at   TIMESTAMP,
	outcome    TEXT NOT NULL DEFAULT '',
	diagnostic TEXT NOT NULL DEFAULT ''
);
`

// Record is one launch session row.
type Record struct {
	ID         string     `db:"id"`
	Port       int        `db:"port"`
	PID        int        `db:"pid"`
	StartedAt  time.Time  `db:"started_at"`
	EndedAt    *time.Time `db:"ended_at"`
	Outcome    string     `db:"outcome"`
	Diagnostic string     `db:"diagnostic"`
}

// Store wraps the registry database.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the registry at path. A generous busy
// timeout covers the rare case of a second launcher instance racing the
// single-instance lock.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordStart inserts a new session row at spawn time.
func (s *Store) RecordStart(id uuid.UUID, port, pid int) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, port, pid, started_at) VALUES (?, ?, ?, ?)`,
		id.String(), port, pid, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("record session start: %w", err)
	}
	return nil
}

// RecordOutcome stores the terminal readiness outcome for a session.
func (s *Store) RecordOutcome(id uuid.UUID, outcome, diagnostic string) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET outcome = ?, diagnostic = ? WHERE id = ?`,
		outcome, diagnostic, id.String(),
	)
	if err != nil {
		return fmt.Errorf("record session outcome: %w", err)
	}
	return nil
}

// RecordEnd marks a session as ended.
func (s *Store) RecordEnd(id uuid.UUID) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET ended_at = ? WHERE id = ?`,
		time.Now().UTC(), id.String(),
	)
	if err != nil {
		return fmt.Errorf("record session end: %w", err)
	}
	return nil
}

// Recent returns the n most recently started sessions, newest first.
func (s *Store) Recent(n int) ([]Record, error) {
	var records []Record
	err := s.db.Select(&records,
		`SELECT id, port, pid, started_at, ended_at, outcome, diagnostic
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent sessions: %w", err)
	}
	return records, nil
}

// Close closes the registry database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Package history keeps an optional sqlite journal of submission attempts.
// It is an audit log for operators: rows are written after each attempt and
// read back only by the status API, never to replay or deduplicate updates.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one journaled submission attempt.
type Entry struct {
	ID           int64     `json:"id"`
	SubmissionID string    `json:"submission_id"`
	Artist       string    `json:"artist"`
	Title        string    `json:"title"`
	StartTime    string    `json:"start_time"`
	Status       string    `json:"status"`
	HTTPStatus   int       `json:"http_status,omitempty"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store is the sqlite-backed journal.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the journal database and applies the schema.
func Open(dbPath string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	conn.SetMaxOpenConns(1)

	store := &Store{conn: conn}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		submission_id TEXT NOT NULL,
		artist TEXT NOT NULL,
		title TEXT NOT NULL,
		start_time TEXT NOT NULL,
		status TEXT NOT NULL,
		http_status INTEGER,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_created_at
		ON submissions (created_at);
	`

	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Record appends one attempt to the journal.
func (s *Store) Record(entry Entry) error {
	_, err := s.conn.Exec(`
		INSERT INTO submissions (submission_id, artist, title, start_time, status, http_status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.SubmissionID, entry.Artist, entry.Title, entry.StartTime, entry.Status, entry.HTTPStatus, entry.Error, time.Now())
	return err
}

// Recent returns the most recent attempts, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.conn.Query(`
		SELECT id, submission_id, artist, title, start_time, status, http_status, error, created_at
		FROM submissions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var httpStatus sql.NullInt64
		var errText sql.NullString
		if err := rows.Scan(&entry.ID, &entry.SubmissionID, &entry.Artist, &entry.Title,
			&entry.StartTime, &entry.Status, &httpStatus, &errText, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		entry.HTTPStatus = int(httpStatus.Int64)
		entry.Error = errText.String
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

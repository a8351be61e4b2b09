package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by stores when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS service (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		recurring INTEGER NOT NULL DEFAULT 0,
		day TEXT,
		service_date TEXT,
		start_time TEXT NOT NULL DEFAULT '',
		open_lead_minutes INTEGER,
		close_after_minutes INTEGER,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL,
		service_id TEXT NOT NULL,
		service_date TEXT NOT NULL,
		status TEXT NOT NULL,
		mode TEXT NOT NULL,
		marked_at TEXT NOT NULL,
		marked_by TEXT,
		UNIQUE (person_id, service_id, service_date),
		FOREIGN KEY (person_id) REFERENCES member(id)
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_service_date ON attendance (service_date);

	CREATE TABLE IF NOT EXISTS followup_status (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL UNIQUE,
		position INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS first_timer (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		visit_date TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_first_timer_visit_date ON first_timer (visit_date);

	CREATE TABLE IF NOT EXISTS follow_up_feedback (
		id TEXT PRIMARY KEY,
		first_timer_id TEXT NOT NULL,
		note TEXT NOT NULL,
		author TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (first_timer_id) REFERENCES first_timer(id) ON DELETE CASCADE
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// schema holds the table definitions applied at startup. Statements are
// idempotent so Migrate can run on every boot.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS instructors (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE COLLATE NOCASE,
		display_name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS recurrence_patterns (
		id TEXT PRIMARY KEY,
		pattern_type TEXT NOT NULL CHECK (pattern_type IN ('daily', 'weekly', 'monthly')),
		interval_value INTEGER NOT NULL CHECK (interval_value > 0),
		days_of_week TEXT NOT NULL DEFAULT '',
		day_of_month INTEGER NOT NULL DEFAULT 0,
		occurrence_count INTEGER NOT NULL DEFAULT 0,
		ends_on TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS class_definitions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		instructor_id TEXT NOT NULL REFERENCES instructors(id),
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		capacity INTEGER NOT NULL CHECK (capacity > 0),
		active INTEGER NOT NULL DEFAULT 1,
		recurrence_pattern_id TEXT REFERENCES recurrence_patterns(id),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_sessions (
		id TEXT PRIMARY KEY,
		class_id TEXT NOT NULL REFERENCES class_definitions(id),
		instructor_id TEXT NOT NULL REFERENCES instructors(id),
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		timezone TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('scheduled', 'cancelled')),
		cancel_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	// Backstop for the non-atomic conflict-check-then-create sequence: a
	// concurrent writer that books the same instructor slot hits this
	// index instead of double booking.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_instructor_start
		ON scheduled_sessions(instructor_id, start_time)
		WHERE status = 'scheduled'`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_class ON scheduled_sessions(class_id, start_time)`,
}

// Migrate applies the schema to the connected database. The statements run
// in one transaction so a failed boot never leaves a partial schema behind.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	return cp.WithTransaction(ctx, func(tx *sql.Tx) error {
		for _, stmt := range schema {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("apply schema: %w", err)
			}
		}
		return nil
	})
}

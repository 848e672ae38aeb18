package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/classtrack/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool *ConnectionPool
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession inserts a new scheduled session.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.ScheduledSession) error {
	if session.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO scheduled_sessions (id, class_id, instructor_id, start_time, end_time, timezone, status, cancel_reason, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var reason sql.NullString
	if session.CancelReason != nil {
		reason = sql.NullString{String: *session.CancelReason, Valid: true}
	}

	_, err := r.pool.db.ExecContext(ctx, query,
		session.ID,
		session.ClassID,
		session.InstructorID,
		formatTime(session.Start),
		formatTime(session.End),
		session.Timezone,
		session.Status,
		reason,
		formatTime(session.CreatedAt),
		formatTime(session.UpdatedAt),
	)
	return mapError(err)
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.ScheduledSession, error) {
	if id == "" {
		return persistence.ScheduledSession{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, class_id, instructor_id, start_time, end_time, timezone, status, cancel_reason, created_at, updated_at
		FROM scheduled_sessions
		WHERE id = ?
	`

	session, err := scanSession(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.ScheduledSession{}, persistence.ErrNotFound
		}
		return persistence.ScheduledSession{}, mapError(err)
	}
	return session, nil
}

// ListSessions lists sessions matching the filter, ordered by start time.
// The time bounds select intersecting sessions: OverlapsFrom matches rows
// that end after it, OverlapsUntil matches rows that start before it.
func (r *SessionRepository) ListSessions(ctx context.Context, filter persistence.SessionFilter) ([]persistence.ScheduledSession, error) {
	query, args := buildSessionQuery(filter)

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var sessions []persistence.ScheduledSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, mapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return sessions, nil
}

// UpdateSessionStatus transitions a session's status, recording the reason
// when one is supplied.
func (r *SessionRepository) UpdateSessionStatus(ctx context.Context, id, status string, reason *string, updatedAt time.Time) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	var cancelReason sql.NullString
	if reason != nil {
		cancelReason = sql.NullString{String: *reason, Valid: true}
	}

	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE scheduled_sessions SET status = ?, cancel_reason = ?, updated_at = ? WHERE id = ?",
		status, cancelReason, formatTime(updatedAt), id,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (persistence.ScheduledSession, error) {
	var session persistence.ScheduledSession
	var startStr, endStr, createdStr, updatedStr string
	var reason sql.NullString

	if err := row.Scan(
		&session.ID,
		&session.ClassID,
		&session.InstructorID,
		&startStr,
		&endStr,
		&session.Timezone,
		&session.Status,
		&reason,
		&createdStr,
		&updatedStr,
	); err != nil {
		return persistence.ScheduledSession{}, err
	}

	if reason.Valid {
		session.CancelReason = &reason.String
	}

	var err error
	if session.Start, err = parseTime(startStr); err != nil {
		return persistence.ScheduledSession{}, err
	}
	if session.End, err = parseTime(endStr); err != nil {
		return persistence.ScheduledSession{}, err
	}
	if session.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.ScheduledSession{}, err
	}
	if session.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.ScheduledSession{}, err
	}
	return session, nil
}

func buildSessionQuery(filter persistence.SessionFilter) (string, []any) {
	query := `
		SELECT id, class_id, instructor_id, start_time, end_time, timezone, status, cancel_reason, created_at, updated_at
		FROM scheduled_sessions
	`

	var conditions []string
	var args []any

	if filter.ClassID != "" {
		conditions = append(conditions, "class_id = ?")
		args = append(args, filter.ClassID)
	}
	if filter.InstructorID != "" {
		conditions = append(conditions, "instructor_id = ?")
		args = append(args, filter.InstructorID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.OverlapsFrom != nil {
		conditions = append(conditions, "end_time > ?")
		args = append(args, formatTime(*filter.OverlapsFrom))
	}
	if filter.OverlapsUntil != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, formatTime(*filter.OverlapsUntil))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time ASC, id ASC"

	return query, args
}

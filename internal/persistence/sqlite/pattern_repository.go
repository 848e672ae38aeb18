package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/classtrack/internal/persistence"
)

// PatternRepository implements persistence.PatternRepository using SQLite.
type PatternRepository struct {
	pool *ConnectionPool
}

// NewPatternRepository creates a new SQLite pattern repository.
func NewPatternRepository(pool *ConnectionPool) *PatternRepository {
	return &PatternRepository{pool: pool}
}

// CreatePattern inserts a new recurrence pattern.
func (r *PatternRepository) CreatePattern(ctx context.Context, pattern persistence.RecurrencePattern) error {
	if pattern.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO recurrence_patterns (id, pattern_type, interval_value, days_of_week, day_of_month, occurrence_count, ends_on, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		pattern.ID,
		pattern.Type,
		pattern.IntervalValue,
		pattern.DaysOfWeek,
		pattern.DayOfMonth,
		pattern.OccurrenceCount,
		nullTime(pattern.EndsOn),
		formatTime(pattern.CreatedAt),
		formatTime(pattern.UpdatedAt),
	)
	return mapError(err)
}

// UpdatePattern updates an existing recurrence pattern.
func (r *PatternRepository) UpdatePattern(ctx context.Context, pattern persistence.RecurrencePattern) error {
	if pattern.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE recurrence_patterns
		SET pattern_type = ?, interval_value = ?, days_of_week = ?, day_of_month = ?, occurrence_count = ?, ends_on = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		pattern.Type,
		pattern.IntervalValue,
		pattern.DaysOfWeek,
		pattern.DayOfMonth,
		pattern.OccurrenceCount,
		nullTime(pattern.EndsOn),
		formatTime(pattern.UpdatedAt),
		pattern.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetPattern retrieves a recurrence pattern by ID.
func (r *PatternRepository) GetPattern(ctx context.Context, id string) (persistence.RecurrencePattern, error) {
	if id == "" {
		return persistence.RecurrencePattern{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, patternSelect+" WHERE id = ?", id)
	pattern, err := scanPattern(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.RecurrencePattern{}, persistence.ErrNotFound
		}
		return persistence.RecurrencePattern{}, mapError(err)
	}
	return pattern, nil
}

// ListPatterns returns all recurrence patterns ordered by creation time.
func (r *PatternRepository) ListPatterns(ctx context.Context) ([]persistence.RecurrencePattern, error) {
	rows, err := r.pool.db.QueryContext(ctx, patternSelect+" ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var patterns []persistence.RecurrencePattern
	for rows.Next() {
		pattern, err := scanPattern(rows)
		if err != nil {
			return nil, mapError(err)
		}
		patterns = append(patterns, pattern)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return patterns, nil
}

// DeletePattern removes a recurrence pattern by ID.
func (r *PatternRepository) DeletePattern(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM recurrence_patterns WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

const patternSelect = `
	SELECT id, pattern_type, interval_value, days_of_week, day_of_month, occurrence_count, ends_on, created_at, updated_at
	FROM recurrence_patterns
`

func scanPattern(row rowScanner) (persistence.RecurrencePattern, error) {
	var pattern persistence.RecurrencePattern
	var endsOn sql.NullString
	var createdStr, updatedStr string

	if err := row.Scan(
		&pattern.ID,
		&pattern.Type,
		&pattern.IntervalValue,
		&pattern.DaysOfWeek,
		&pattern.DayOfMonth,
		&pattern.OccurrenceCount,
		&endsOn,
		&createdStr,
		&updatedStr,
	); err != nil {
		return persistence.RecurrencePattern{}, err
	}

	if endsOn.Valid {
		parsed, err := parseTime(endsOn.String)
		if err != nil {
			return persistence.RecurrencePattern{}, err
		}
		pattern.EndsOn = &parsed
	}

	var err error
	if pattern.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.RecurrencePattern{}, err
	}
	if pattern.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.RecurrencePattern{}, err
	}
	return pattern, nil
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

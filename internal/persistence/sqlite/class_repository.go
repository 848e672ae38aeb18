package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/classtrack/internal/persistence"
)

// ClassRepository implements persistence.ClassRepository using SQLite.
type ClassRepository struct {
	pool *ConnectionPool
}

// NewClassRepository creates a new SQLite class repository.
func NewClassRepository(pool *ConnectionPool) *ClassRepository {
	return &ClassRepository{pool: pool}
}

// CreateClass inserts a new class definition.
func (r *ClassRepository) CreateClass(ctx context.Context, class persistence.ClassDefinition) error {
	if class.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO class_definitions (id, title, instructor_id, start_time, end_time, capacity, active, recurrence_pattern_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		class.ID,
		class.Title,
		class.InstructorID,
		class.StartTime,
		class.EndTime,
		class.Capacity,
		boolToInt(class.Active),
		nullString(class.RecurrencePatternID),
		formatTime(class.CreatedAt),
		formatTime(class.UpdatedAt),
	)
	return mapError(err)
}

// UpdateClass updates an existing class definition.
func (r *ClassRepository) UpdateClass(ctx context.Context, class persistence.ClassDefinition) error {
	if class.ID == "" {
		return persistence.ErrNotFound
	}

	query := `
		UPDATE class_definitions
		SET title = ?, instructor_id = ?, start_time = ?, end_time = ?, capacity = ?, active = ?, recurrence_pattern_id = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.pool.db.ExecContext(ctx, query,
		class.Title,
		class.InstructorID,
		class.StartTime,
		class.EndTime,
		class.Capacity,
		boolToInt(class.Active),
		nullString(class.RecurrencePatternID),
		formatTime(class.UpdatedAt),
		class.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

// GetClass retrieves a class definition by ID.
func (r *ClassRepository) GetClass(ctx context.Context, id string) (persistence.ClassDefinition, error) {
	if id == "" {
		return persistence.ClassDefinition{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, classSelect+" WHERE id = ?", id)
	class, err := scanClass(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.ClassDefinition{}, persistence.ErrNotFound
		}
		return persistence.ClassDefinition{}, mapError(err)
	}
	return class, nil
}

// ListClasses returns all class definitions ordered by title.
func (r *ClassRepository) ListClasses(ctx context.Context) ([]persistence.ClassDefinition, error) {
	rows, err := r.pool.db.QueryContext(ctx, classSelect+" ORDER BY title ASC, id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var classes []persistence.ClassDefinition
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, mapError(err)
		}
		classes = append(classes, class)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return classes, nil
}

// DeleteClass removes a class definition by ID.
func (r *ClassRepository) DeleteClass(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM class_definitions WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

const classSelect = `
	SELECT id, title, instructor_id, start_time, end_time, capacity, active, recurrence_pattern_id, created_at, updated_at
	FROM class_definitions
`

func scanClass(row rowScanner) (persistence.ClassDefinition, error) {
	var class persistence.ClassDefinition
	var active int
	var patternID sql.NullString
	var createdStr, updatedStr string

	if err := row.Scan(
		&class.ID,
		&class.Title,
		&class.InstructorID,
		&class.StartTime,
		&class.EndTime,
		&class.Capacity,
		&active,
		&patternID,
		&createdStr,
		&updatedStr,
	); err != nil {
		return persistence.ClassDefinition{}, err
	}

	class.Active = active != 0
	if patternID.Valid {
		class.RecurrencePatternID = &patternID.String
	}

	var err error
	if class.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.ClassDefinition{}, err
	}
	if class.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.ClassDefinition{}, err
	}
	return class, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func nullString(value *string) sql.NullString {
	if value == nil || *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

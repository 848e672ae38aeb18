package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/classtrack/internal/persistence"
)

// InstructorRepository implements persistence.InstructorRepository using SQLite.
type InstructorRepository struct {
	pool *ConnectionPool
}

// NewInstructorRepository creates a new SQLite instructor repository.
func NewInstructorRepository(pool *ConnectionPool) *InstructorRepository {
	return &InstructorRepository{pool: pool}
}

// CreateInstructor inserts a new instructor record.
func (r *InstructorRepository) CreateInstructor(ctx context.Context, instructor persistence.Instructor) error {
	if instructor.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO instructors (id, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.pool.db.ExecContext(ctx, query,
		instructor.ID,
		instructor.Email,
		instructor.DisplayName,
		formatTime(instructor.CreatedAt),
		formatTime(instructor.UpdatedAt),
	)
	return mapError(err)
}

// GetInstructor retrieves an instructor by ID.
func (r *InstructorRepository) GetInstructor(ctx context.Context, id string) (persistence.Instructor, error) {
	if id == "" {
		return persistence.Instructor{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, instructorSelect+" WHERE id = ?", id)
	instructor, err := scanInstructor(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Instructor{}, persistence.ErrNotFound
		}
		return persistence.Instructor{}, mapError(err)
	}
	return instructor, nil
}

// ListInstructors returns all instructors ordered by display name.
func (r *InstructorRepository) ListInstructors(ctx context.Context) ([]persistence.Instructor, error) {
	rows, err := r.pool.db.QueryContext(ctx, instructorSelect+" ORDER BY display_name ASC, id ASC")
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var instructors []persistence.Instructor
	for rows.Next() {
		instructor, err := scanInstructor(rows)
		if err != nil {
			return nil, mapError(err)
		}
		instructors = append(instructors, instructor)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return instructors, nil
}

// DeleteInstructor removes an instructor by ID.
func (r *InstructorRepository) DeleteInstructor(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM instructors WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result)
}

const instructorSelect = `
	SELECT id, email, display_name, created_at, updated_at
	FROM instructors
`

func scanInstructor(row rowScanner) (persistence.Instructor, error) {
	var instructor persistence.Instructor
	var createdStr, updatedStr string

	if err := row.Scan(
		&instructor.ID,
		&instructor.Email,
		&instructor.DisplayName,
		&createdStr,
		&updatedStr,
	); err != nil {
		return persistence.Instructor{}, err
	}

	var err error
	if instructor.CreatedAt, err = parseTime(createdStr); err != nil {
		return persistence.Instructor{}, err
	}
	if instructor.UpdatedAt, err = parseTime(updatedStr); err != nil {
		return persistence.Instructor{}, err
	}
	return instructor, nil
}

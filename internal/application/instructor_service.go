package application

import (
	"context"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// InstructorRepository captures the persistence interactions needed by the
// instructor registry. Full instructor management lives outside this
// service; the registry exists so class definitions and conflict queries
// have real records to reference.
type InstructorRepository interface {
	CreateInstructor(ctx context.Context, instructor Instructor) (Instructor, error)
	GetInstructor(ctx context.Context, id string) (Instructor, error)
	ListInstructors(ctx context.Context) ([]Instructor, error)
	DeleteInstructor(ctx context.Context, id string) error
}

// InstructorService maintains the instructor registry.
type InstructorService struct {
	instructors InstructorRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewInstructorService wires dependencies for instructor registry operations.
func NewInstructorService(instructors InstructorRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *InstructorService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &InstructorService{
		instructors: instructors,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateInstructor validates and stores an instructor record.
func (s *InstructorService) CreateInstructor(ctx context.Context, input InstructorInput) (Instructor, error) {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Email) == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		vErr.add("display_name", "display name is required")
	}
	if vErr.HasErrors() {
		return Instructor{}, vErr
	}

	createdAt := s.now()
	instructor := Instructor{
		ID:          s.idGenerator(),
		Email:       strings.TrimSpace(input.Email),
		DisplayName: strings.TrimSpace(input.DisplayName),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	persisted, err := s.instructors.CreateInstructor(ctx, instructor)
	if err != nil {
		return Instructor{}, mapRepoError(err)
	}
	return persisted, nil
}

// GetInstructor returns a single instructor record.
func (s *InstructorService) GetInstructor(ctx context.Context, id string) (Instructor, error) {
	instructor, err := s.instructors.GetInstructor(ctx, id)
	if err != nil {
		return Instructor{}, mapRepoError(err)
	}
	return instructor, nil
}

// ListInstructors enumerates instructor records.
func (s *InstructorService) ListInstructors(ctx context.Context) ([]Instructor, error) {
	instructors, err := s.instructors.ListInstructors(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return instructors, nil
}

// DeleteInstructor removes an instructor record.
func (s *InstructorService) DeleteInstructor(ctx context.Context, id string) error {
	if err := s.instructors.DeleteInstructor(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

package application

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// ClassRepository captures the persistence interactions needed by the class services.
type ClassRepository interface {
	CreateClass(ctx context.Context, class ClassDefinition) (ClassDefinition, error)
	GetClass(ctx context.Context, id string) (ClassDefinition, error)
	UpdateClass(ctx context.Context, class ClassDefinition) (ClassDefinition, error)
	DeleteClass(ctx context.Context, id string) error
	ListClasses(ctx context.Context) ([]ClassDefinition, error)
}

// InstructorDirectory exposes instructor lookup operations.
type InstructorDirectory interface {
	InstructorExists(ctx context.Context, id string) (bool, error)
}

// PatternCatalog exposes recurrence pattern lookup operations.
type PatternCatalog interface {
	PatternExists(ctx context.Context, id string) (bool, error)
}

// ClassService orchestrates validation and persistence for class definitions.
type ClassService struct {
	classes     ClassRepository
	instructors InstructorDirectory
	patterns    PatternCatalog
	defaults    Defaults
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewClassService wires dependencies for class definition operations.
func NewClassService(classes ClassRepository, instructors InstructorDirectory, patterns PatternCatalog, defaults Defaults, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ClassService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if defaults.Location == nil {
		defaults = NewDefaults()
	}
	return &ClassService{
		classes:     classes,
		instructors: instructors,
		patterns:    patterns,
		defaults:    defaults,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateClass validates the input before delegating to persistence.
func (s *ClassService) CreateClass(ctx context.Context, input ClassInput) (ClassDefinition, error) {
	if input.Capacity == 0 {
		input.Capacity = s.defaults.MaxParticipants
	}

	if vErr := s.validateInput(ctx, input); vErr != nil {
		return ClassDefinition{}, vErr
	}

	createdAt := s.now()
	class := ClassDefinition{
		ID:                  s.idGenerator(),
		Title:               strings.TrimSpace(input.Title),
		InstructorID:        input.InstructorID,
		StartTime:           strings.TrimSpace(input.StartTime),
		EndTime:             strings.TrimSpace(input.EndTime),
		Capacity:            input.Capacity,
		Active:              input.Active,
		RecurrencePatternID: input.RecurrencePatternID,
		CreatedAt:           createdAt,
		UpdatedAt:           createdAt,
	}

	persisted, err := s.classes.CreateClass(ctx, class)
	if err != nil {
		return ClassDefinition{}, mapRepoError(err)
	}
	return persisted, nil
}

// GetClass returns a single class definition.
func (s *ClassService) GetClass(ctx context.Context, id string) (ClassDefinition, error) {
	class, err := s.classes.GetClass(ctx, id)
	if err != nil {
		return ClassDefinition{}, mapRepoError(err)
	}
	return class, nil
}

// UpdateClass applies validation before updating persistence state.
func (s *ClassService) UpdateClass(ctx context.Context, id string, input ClassInput) (ClassDefinition, error) {
	existing, err := s.classes.GetClass(ctx, id)
	if err != nil {
		return ClassDefinition{}, mapRepoError(err)
	}

	if input.Capacity == 0 {
		input.Capacity = existing.Capacity
	}
	if vErr := s.validateInput(ctx, input); vErr != nil {
		return ClassDefinition{}, vErr
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.InstructorID = input.InstructorID
	updated.StartTime = strings.TrimSpace(input.StartTime)
	updated.EndTime = strings.TrimSpace(input.EndTime)
	updated.Capacity = input.Capacity
	updated.Active = input.Active
	updated.RecurrencePatternID = input.RecurrencePatternID
	updated.UpdatedAt = s.now()

	persisted, err := s.classes.UpdateClass(ctx, updated)
	if err != nil {
		return ClassDefinition{}, mapRepoError(err)
	}
	return persisted, nil
}

// DeleteClass removes a class definition.
func (s *ClassService) DeleteClass(ctx context.Context, id string) error {
	if err := s.classes.DeleteClass(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// ListClasses enumerates class definitions ordered by title.
func (s *ClassService) ListClasses(ctx context.Context) ([]ClassDefinition, error) {
	classes, err := s.classes.ListClasses(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return classes, nil
}

func (s *ClassService) validateInput(ctx context.Context, input ClassInput) error {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.InstructorID) == "" {
		vErr.add("instructor_id", "instructor is required")
	}

	start, startErr := parseTimeOfDay(input.StartTime)
	if startErr != nil {
		vErr.add("start_time", "start time must be in HH:MM form")
	}
	end, endErr := parseTimeOfDay(input.EndTime)
	if endErr != nil {
		vErr.add("end_time", "end time must be in HH:MM form")
	}
	if startErr == nil && endErr == nil && !start.before(end) {
		vErr.add("time", "start time must be before end time")
	}

	if input.Capacity < 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	if vErr.HasErrors() {
		return vErr
	}

	if input.InstructorID != "" && s.instructors != nil {
		exists, err := s.instructors.InstructorExists(ctx, input.InstructorID)
		if err != nil {
			return err
		}
		if !exists {
			vErr.add("instructor_id", "instructor does not exist")
		}
	}

	if input.RecurrencePatternID != nil && *input.RecurrencePatternID != "" && s.patterns != nil {
		exists, err := s.patterns.PatternExists(ctx, *input.RecurrencePatternID)
		if err != nil {
			return err
		}
		if !exists {
			vErr.add("recurrence_pattern_id", "recurrence pattern does not exist")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

package application

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// PatternRepository captures the persistence interactions needed by the pattern services.
type PatternRepository interface {
	CreatePattern(ctx context.Context, pattern RecurrencePattern) (RecurrencePattern, error)
	GetPattern(ctx context.Context, id string) (RecurrencePattern, error)
	UpdatePattern(ctx context.Context, pattern RecurrencePattern) (RecurrencePattern, error)
	DeletePattern(ctx context.Context, id string) error
	ListPatterns(ctx context.Context) ([]RecurrencePattern, error)
}

// PatternService orchestrates validation and persistence for recurrence patterns.
type PatternService struct {
	patterns    PatternRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPatternService wires dependencies for recurrence pattern operations.
func NewPatternService(patterns PatternRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PatternService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PatternService{
		patterns:    patterns,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreatePattern validates and stores a recurrence pattern. Weekday tokens
// that do not parse are reported as warnings at save time so the caller can
// correct them, but they do not fail the write.
func (s *PatternService) CreatePattern(ctx context.Context, input PatternInput) (RecurrencePattern, error) {
	pattern := s.fromInput(input)
	pattern.ID = s.idGenerator()
	createdAt := s.now()
	pattern.CreatedAt = createdAt
	pattern.UpdatedAt = createdAt

	if vErr := validatePattern(pattern); vErr != nil {
		return RecurrencePattern{}, vErr
	}
	s.warnDroppedWeekdays(ctx, pattern)

	persisted, err := s.patterns.CreatePattern(ctx, pattern)
	if err != nil {
		return RecurrencePattern{}, mapRepoError(err)
	}
	return persisted, nil
}

// GetPattern returns a single recurrence pattern.
func (s *PatternService) GetPattern(ctx context.Context, id string) (RecurrencePattern, error) {
	pattern, err := s.patterns.GetPattern(ctx, id)
	if err != nil {
		return RecurrencePattern{}, mapRepoError(err)
	}
	return pattern, nil
}

// UpdatePattern applies validation before updating persistence state.
func (s *PatternService) UpdatePattern(ctx context.Context, id string, input PatternInput) (RecurrencePattern, error) {
	existing, err := s.patterns.GetPattern(ctx, id)
	if err != nil {
		return RecurrencePattern{}, mapRepoError(err)
	}

	updated := s.fromInput(input)
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = s.now()

	if vErr := validatePattern(updated); vErr != nil {
		return RecurrencePattern{}, vErr
	}
	s.warnDroppedWeekdays(ctx, updated)

	persisted, err := s.patterns.UpdatePattern(ctx, updated)
	if err != nil {
		return RecurrencePattern{}, mapRepoError(err)
	}
	return persisted, nil
}

// DeletePattern removes a recurrence pattern.
func (s *PatternService) DeletePattern(ctx context.Context, id string) error {
	if err := s.patterns.DeletePattern(ctx, id); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// ListPatterns enumerates stored recurrence patterns.
func (s *PatternService) ListPatterns(ctx context.Context) ([]RecurrencePattern, error) {
	patterns, err := s.patterns.ListPatterns(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return patterns, nil
}

func (s *PatternService) fromInput(input PatternInput) RecurrencePattern {
	interval := input.IntervalValue
	if interval == 0 {
		interval = 1
	}
	return RecurrencePattern{
		Type:            strings.ToLower(strings.TrimSpace(input.Type)),
		IntervalValue:   interval,
		DaysOfWeek:      strings.TrimSpace(input.DaysOfWeek),
		DayOfMonth:      input.DayOfMonth,
		OccurrenceCount: input.OccurrenceCount,
		EndsOn:          input.EndsOn,
	}
}

func (s *PatternService) warnDroppedWeekdays(ctx context.Context, pattern RecurrencePattern) {
	if pattern.Type != PatternTypeWeekly {
		return
	}
	_, dropped, err := compilePattern(pattern)
	if err != nil {
		return
	}
	logger := serviceLogger(ctx, s.logger, "pattern", "save", "pattern_id", pattern.ID)
	for _, token := range dropped {
		logger.WarnContext(ctx, "ignoring unrecognized weekday token", "token", token)
	}
}

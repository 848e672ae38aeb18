package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/classtrack/internal/persistence"
	"github.com/example/classtrack/internal/recurrence"
)

// regeneratedReason is attached to sessions cancelled because the recurring
// schedule is being rebuilt.
const regeneratedReason = "superseded by updated recurring schedule"

// Timetable is the external scheduling collaborator. The recurring schedule
// service only builds candidate requests and reads results back; conflict
// enforcement and session ownership live behind this interface.
type Timetable interface {
	HasInstructorConflict(ctx context.Context, instructorID string, candidate SessionRequest) (bool, error)
	ScheduleClass(ctx context.Context, candidate SessionRequest) (ScheduledSession, error)
	GetScheduleForInstructor(ctx context.Context, instructorID string, from, to time.Time) ([]ScheduledSession, error)
	SessionsForClass(ctx context.Context, classID string, from, to time.Time) ([]ScheduledSession, error)
	CancelScheduledInstance(ctx context.Context, sessionID, reason string) error
}

// RecurringScheduleService turns recurrence patterns into scheduled class
// sessions via the timetable collaborator.
type RecurringScheduleService struct {
	classes   ClassRepository
	patterns  PatternRepository
	timetable Timetable
	engine    *recurrence.Engine
	defaults  Defaults
	now       func() time.Time
	logger    *slog.Logger
}

// NewRecurringScheduleService wires dependencies for recurring schedule operations.
func NewRecurringScheduleService(classes ClassRepository, patterns PatternRepository, timetable Timetable, defaults Defaults, now func() time.Time, logger *slog.Logger) *RecurringScheduleService {
	if defaults.Location == nil {
		defaults = NewDefaults()
	}
	if now == nil {
		now = time.Now
	}
	return &RecurringScheduleService{
		classes:   classes,
		patterns:  patterns,
		timetable: timetable,
		engine:    recurrence.NewEngine(defaults.Location, defaults.GenerationHorizonYears),
		defaults:  defaults,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

// GenerateScheduledInstances validates the class and pattern, calculates the
// occurrence dates inside [windowStart, windowEnd] and materializes each one
// as a session unless the instructor is already booked.
//
// Failure handling is per occurrence: a conflicting or failed date is
// recorded in the result's Skipped list and never aborts the batch. Only
// the up-front validation aborts the whole operation.
func (s *RecurringScheduleService) GenerateScheduledInstances(ctx context.Context, class ClassDefinition, pattern RecurrencePattern, windowStart, windowEnd time.Time) (GenerationResult, error) {
	logger := serviceLogger(ctx, s.logger, "recurring_schedule", "generate", "class_id", class.ID, "class_title", class.Title)

	if vErr := validateClassForScheduling(class); vErr != nil {
		return GenerationResult{}, vErr
	}
	if vErr := validatePattern(pattern); vErr != nil {
		return GenerationResult{}, vErr
	}

	compiled, dropped, err := compilePattern(pattern)
	if err != nil {
		return GenerationResult{}, err
	}
	for _, token := range dropped {
		logger.WarnContext(ctx, "ignoring unrecognized weekday token", "token", token, "pattern_id", pattern.ID)
	}

	dates, err := s.engine.OccurrenceDates(compiled, windowStart, windowEnd)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("calculate occurrence dates: %w", err)
	}

	// Validated above, so these cannot fail.
	startOfDay, _ := parseTimeOfDay(class.StartTime)
	endOfDay, _ := parseTimeOfDay(class.EndTime)

	result := GenerationResult{}
	for _, date := range dates {
		candidate := SessionRequest{
			ClassID:      class.ID,
			InstructorID: class.InstructorID,
			Start:        startOfDay.at(date, s.defaults.Location),
			End:          endOfDay.at(date, s.defaults.Location),
			Timezone:     s.defaults.Timezone,
		}

		conflict, err := s.timetable.HasInstructorConflict(ctx, class.InstructorID, candidate)
		if err != nil {
			logger.ErrorContext(ctx, "conflict check failed", "date", date.Format(time.DateOnly), "error", err)
			result.Skipped = append(result.Skipped, SkippedOccurrence{Date: date, Reason: fmt.Sprintf("conflict check failed: %v", err)})
			continue
		}
		if conflict {
			logger.WarnContext(ctx, "skipping occurrence: instructor already booked", "date", date.Format(time.DateOnly), "instructor_id", class.InstructorID)
			result.Skipped = append(result.Skipped, SkippedOccurrence{Date: date, Reason: "instructor conflict"})
			continue
		}

		session, err := s.timetable.ScheduleClass(ctx, candidate)
		if err != nil {
			logger.ErrorContext(ctx, "failed to schedule occurrence", "date", date.Format(time.DateOnly), "error", err)
			result.Skipped = append(result.Skipped, SkippedOccurrence{Date: date, Reason: fmt.Sprintf("scheduling failed: %v", err)})
			continue
		}
		result.Created = append(result.Created, session)
	}

	logger.InfoContext(ctx, "recurring schedule generated", "created", len(result.Created), "skipped", len(result.Skipped))
	return result, nil
}

// ScheduleRecurringClass loads the class definition and its attached
// pattern, then delegates to GenerateScheduledInstances.
func (s *RecurringScheduleService) ScheduleRecurringClass(ctx context.Context, classID string, windowStart, windowEnd time.Time) (GenerationResult, error) {
	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return GenerationResult{}, mapRepoError(err)
	}

	if class.RecurrencePatternID == nil || *class.RecurrencePatternID == "" {
		vErr := &ValidationError{}
		vErr.add("recurrence_pattern_id", "class has no recurrence pattern attached")
		return GenerationResult{}, vErr
	}

	pattern, err := s.patterns.GetPattern(ctx, *class.RecurrencePatternID)
	if err != nil {
		return GenerationResult{}, mapRepoError(err)
	}

	return s.GenerateScheduledInstances(ctx, class, pattern, windowStart, windowEnd)
}

// UpdateRecurringSchedule replaces the not-yet-occurred sessions of a class:
// everything still in scheduled status from tomorrow on is cancelled with a
// fixed reason, then the schedule is regenerated from tomorrow through the
// pattern's end date, or one year ahead when the pattern is open ended.
// Individual cancellation failures are logged and skipped; the report
// carries the count that succeeded.
func (s *RecurringScheduleService) UpdateRecurringSchedule(ctx context.Context, classID string) (RegenerationReport, error) {
	logger := serviceLogger(ctx, s.logger, "recurring_schedule", "regenerate", "class_id", classID)

	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return RegenerationReport{}, mapRepoError(err)
	}
	if class.RecurrencePatternID == nil || *class.RecurrencePatternID == "" {
		vErr := &ValidationError{}
		vErr.add("recurrence_pattern_id", "class has no recurrence pattern attached")
		return RegenerationReport{}, vErr
	}
	pattern, err := s.patterns.GetPattern(ctx, *class.RecurrencePatternID)
	if err != nil {
		return RegenerationReport{}, mapRepoError(err)
	}

	tomorrow := s.startOfTomorrow()
	horizon := tomorrow.AddDate(s.defaults.CancelLookaheadYears, 0, 0)

	sessions, err := s.timetable.SessionsForClass(ctx, classID, tomorrow, horizon)
	if err != nil {
		return RegenerationReport{}, fmt.Errorf("list sessions for class: %w", err)
	}

	report := RegenerationReport{}
	for _, session := range sessions {
		if session.Status != SessionStatusScheduled {
			continue
		}
		if err := s.timetable.CancelScheduledInstance(ctx, session.ID, regeneratedReason); err != nil {
			logger.ErrorContext(ctx, "failed to cancel session", "session_id", session.ID, "error", err)
			continue
		}
		report.Cancelled++
	}
	logger.InfoContext(ctx, "cancelled future sessions", "cancelled", report.Cancelled, "considered", len(sessions))

	generation, err := s.GenerateScheduledInstances(ctx, class, pattern, tomorrow, time.Time{})
	if err != nil {
		return report, err
	}
	report.Generation = generation
	return report, nil
}

// CancelRecurringSchedule cancels every still-scheduled session of the class
// found in the instructor's timetable over the cancellation lookahead
// window. Cancellation is best effort per session; the count of successful
// cancellations is returned.
func (s *RecurringScheduleService) CancelRecurringSchedule(ctx context.Context, classID, reason string) (int, error) {
	logger := serviceLogger(ctx, s.logger, "recurring_schedule", "cancel", "class_id", classID)

	vErr := &ValidationError{}
	if classID == "" {
		vErr.add("class_id", "class id is required")
	}
	if strings.TrimSpace(reason) == "" {
		vErr.add("reason", "cancellation reason is required")
	}
	if vErr.HasErrors() {
		return 0, vErr
	}

	class, err := s.classes.GetClass(ctx, classID)
	if err != nil {
		return 0, mapRepoError(err)
	}

	from := s.now().In(s.defaults.Location)
	to := from.AddDate(s.defaults.CancelLookaheadYears, 0, 0)

	sessions, err := s.timetable.GetScheduleForInstructor(ctx, class.InstructorID, from, to)
	if err != nil {
		return 0, fmt.Errorf("fetch instructor schedule: %w", err)
	}

	cancelled := 0
	for _, session := range sessions {
		if session.ClassID != classID || session.Status != SessionStatusScheduled {
			continue
		}
		if err := s.timetable.CancelScheduledInstance(ctx, session.ID, reason); err != nil {
			logger.ErrorContext(ctx, "failed to cancel session", "session_id", session.ID, "error", err)
			continue
		}
		cancelled++
	}

	logger.InfoContext(ctx, "recurring schedule cancelled", "cancelled", cancelled)
	return cancelled, nil
}

func (s *RecurringScheduleService) startOfTomorrow() time.Time {
	now := s.now().In(s.defaults.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.defaults.Location).AddDate(0, 0, 1)
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("references", "related records are missing")
		return vErr
	}
	return err
}

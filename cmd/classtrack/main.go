package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/classtrack/internal/application"
	"github.com/example/classtrack/internal/config"
	httptransport "github.com/example/classtrack/internal/http"
	"github.com/example/classtrack/internal/persistence"
	"github.com/example/classtrack/internal/persistence/sqlite"
	"github.com/example/classtrack/internal/timetable"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Error("storage is unreachable", "error", err)
		os.Exit(1)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply schema", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now
	defaults := application.Defaults{
		Timezone:               cfg.Timezone,
		Location:               cfg.Location,
		GenerationHorizonYears: cfg.GenerationHorizonYears,
		CancelLookaheadYears:   cfg.CancelLookaheadYears,
		MaxParticipants:        cfg.MaxParticipants,
	}

	instructorRepo := sqlite.NewInstructorRepository(pool)
	patternRepo := sqlite.NewPatternRepository(pool)
	classRepo := sqlite.NewClassRepository(pool)
	sessionRepo := sqlite.NewSessionRepository(pool)

	classes := newClassRepositoryAdapter(classRepo)
	patterns := newPatternRepositoryAdapter(patternRepo)
	instructors := newInstructorRepositoryAdapter(instructorRepo)

	timetableService := timetable.NewService(sessionRepo, idGenerator, now, logger)

	instructorService := application.NewInstructorService(instructors, idGenerator, now, logger)
	patternService := application.NewPatternService(patterns, idGenerator, now, logger)
	classService := application.NewClassService(classes, newInstructorDirectoryAdapter(instructorRepo), newPatternCatalogAdapter(patternRepo), defaults, idGenerator, now, logger)
	recurringService := application.NewRecurringScheduleService(classes, patterns, timetableService, defaults, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Instructors: httptransport.NewInstructorHandler(instructorService, logger),
		Patterns:    httptransport.NewPatternHandler(patternService, logger),
		Classes:     httptransport.NewClassHandler(classService, logger),
		Schedules:   httptransport.NewScheduleHandler(recurringService, now, logger),
		Sessions:    httptransport.NewSessionHandler(timetableService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("classtrack API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// ------------------------- repository adapters ---------------------------
//
// The application layer works with its own models; these adapters translate
// to and from the persistence records.

type classRepositoryAdapter struct {
	repo persistence.ClassRepository
}

func newClassRepositoryAdapter(repo persistence.ClassRepository) *classRepositoryAdapter {
	return &classRepositoryAdapter{repo: repo}
}

func (a *classRepositoryAdapter) CreateClass(ctx context.Context, class application.ClassDefinition) (application.ClassDefinition, error) {
	if err := a.repo.CreateClass(ctx, toPersistenceClass(class)); err != nil {
		return application.ClassDefinition{}, err
	}
	return class, nil
}

func (a *classRepositoryAdapter) GetClass(ctx context.Context, id string) (application.ClassDefinition, error) {
	model, err := a.repo.GetClass(ctx, id)
	if err != nil {
		return application.ClassDefinition{}, err
	}
	return toApplicationClass(model), nil
}

func (a *classRepositoryAdapter) UpdateClass(ctx context.Context, class application.ClassDefinition) (application.ClassDefinition, error) {
	if err := a.repo.UpdateClass(ctx, toPersistenceClass(class)); err != nil {
		return application.ClassDefinition{}, err
	}
	return class, nil
}

func (a *classRepositoryAdapter) DeleteClass(ctx context.Context, id string) error {
	return a.repo.DeleteClass(ctx, id)
}

func (a *classRepositoryAdapter) ListClasses(ctx context.Context) ([]application.ClassDefinition, error) {
	models, err := a.repo.ListClasses(ctx)
	if err != nil {
		return nil, err
	}
	classes := make([]application.ClassDefinition, 0, len(models))
	for _, model := range models {
		classes = append(classes, toApplicationClass(model))
	}
	return classes, nil
}

type patternRepositoryAdapter struct {
	repo persistence.PatternRepository
}

func newPatternRepositoryAdapter(repo persistence.PatternRepository) *patternRepositoryAdapter {
	return &patternRepositoryAdapter{repo: repo}
}

func (a *patternRepositoryAdapter) CreatePattern(ctx context.Context, pattern application.RecurrencePattern) (application.RecurrencePattern, error) {
	if err := a.repo.CreatePattern(ctx, toPersistencePattern(pattern)); err != nil {
		return application.RecurrencePattern{}, err
	}
	return pattern, nil
}

func (a *patternRepositoryAdapter) GetPattern(ctx context.Context, id string) (application.RecurrencePattern, error) {
	model, err := a.repo.GetPattern(ctx, id)
	if err != nil {
		return application.RecurrencePattern{}, err
	}
	return toApplicationPattern(model), nil
}

func (a *patternRepositoryAdapter) UpdatePattern(ctx context.Context, pattern application.RecurrencePattern) (application.RecurrencePattern, error) {
	if err := a.repo.UpdatePattern(ctx, toPersistencePattern(pattern)); err != nil {
		return application.RecurrencePattern{}, err
	}
	return pattern, nil
}

func (a *patternRepositoryAdapter) DeletePattern(ctx context.Context, id string) error {
	return a.repo.DeletePattern(ctx, id)
}

func (a *patternRepositoryAdapter) ListPatterns(ctx context.Context) ([]application.RecurrencePattern, error) {
	models, err := a.repo.ListPatterns(ctx)
	if err != nil {
		return nil, err
	}
	patterns := make([]application.RecurrencePattern, 0, len(models))
	for _, model := range models {
		patterns = append(patterns, toApplicationPattern(model))
	}
	return patterns, nil
}

type instructorRepositoryAdapter struct {
	repo persistence.InstructorRepository
}

func newInstructorRepositoryAdapter(repo persistence.InstructorRepository) *instructorRepositoryAdapter {
	return &instructorRepositoryAdapter{repo: repo}
}

func (a *instructorRepositoryAdapter) CreateInstructor(ctx context.Context, instructor application.Instructor) (application.Instructor, error) {
	if err := a.repo.CreateInstructor(ctx, persistence.Instructor(instructor)); err != nil {
		return application.Instructor{}, err
	}
	return instructor, nil
}

func (a *instructorRepositoryAdapter) GetInstructor(ctx context.Context, id string) (application.Instructor, error) {
	model, err := a.repo.GetInstructor(ctx, id)
	if err != nil {
		return application.Instructor{}, err
	}
	return application.Instructor(model), nil
}

func (a *instructorRepositoryAdapter) ListInstructors(ctx context.Context) ([]application.Instructor, error) {
	models, err := a.repo.ListInstructors(ctx)
	if err != nil {
		return nil, err
	}
	instructors := make([]application.Instructor, 0, len(models))
	for _, model := range models {
		instructors = append(instructors, application.Instructor(model))
	}
	return instructors, nil
}

func (a *instructorRepositoryAdapter) DeleteInstructor(ctx context.Context, id string) error {
	return a.repo.DeleteInstructor(ctx, id)
}

type instructorDirectoryAdapter struct {
	repo persistence.InstructorRepository
}

func newInstructorDirectoryAdapter(repo persistence.InstructorRepository) *instructorDirectoryAdapter {
	return &instructorDirectoryAdapter{repo: repo}
}

func (a *instructorDirectoryAdapter) InstructorExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetInstructor(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

type patternCatalogAdapter struct {
	repo persistence.PatternRepository
}

func newPatternCatalogAdapter(repo persistence.PatternRepository) *patternCatalogAdapter {
	return &patternCatalogAdapter{repo: repo}
}

func (a *patternCatalogAdapter) PatternExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetPattern(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toApplicationClass(model persistence.ClassDefinition) application.ClassDefinition {
	return application.ClassDefinition{
		ID:                  model.ID,
		Title:               model.Title,
		InstructorID:        model.InstructorID,
		StartTime:           model.StartTime,
		EndTime:             model.EndTime,
		Capacity:            model.Capacity,
		Active:              model.Active,
		RecurrencePatternID: cloneString(model.RecurrencePatternID),
		CreatedAt:           model.CreatedAt,
		UpdatedAt:           model.UpdatedAt,
	}
}

func toPersistenceClass(class application.ClassDefinition) persistence.ClassDefinition {
	return persistence.ClassDefinition{
		ID:                  class.ID,
		Title:               class.Title,
		InstructorID:        class.InstructorID,
		StartTime:           class.StartTime,
		EndTime:             class.EndTime,
		Capacity:            class.Capacity,
		Active:              class.Active,
		RecurrencePatternID: cloneString(class.RecurrencePatternID),
		CreatedAt:           class.CreatedAt,
		UpdatedAt:           class.UpdatedAt,
	}
}

func toApplicationPattern(model persistence.RecurrencePattern) application.RecurrencePattern {
	return application.RecurrencePattern{
		ID:              model.ID,
		Type:            model.Type,
		IntervalValue:   model.IntervalValue,
		DaysOfWeek:      model.DaysOfWeek,
		DayOfMonth:      model.DayOfMonth,
		OccurrenceCount: model.OccurrenceCount,
		EndsOn:          cloneTime(model.EndsOn),
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

func toPersistencePattern(pattern application.RecurrencePattern) persistence.RecurrencePattern {
	return persistence.RecurrencePattern{
		ID:              pattern.ID,
		Type:            pattern.Type,
		IntervalValue:   pattern.IntervalValue,
		DaysOfWeek:      pattern.DaysOfWeek,
		DayOfMonth:      pattern.DayOfMonth,
		OccurrenceCount: pattern.OccurrenceCount,
		EndsOn:          cloneTime(pattern.EndsOn),
		CreatedAt:       pattern.CreatedAt,
		UpdatedAt:       pattern.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

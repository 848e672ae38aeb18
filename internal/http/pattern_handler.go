package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/classtrack/internal/application"
)

type patternService interface {
	CreatePattern(ctx context.Context, input application.PatternInput) (application.RecurrencePattern, error)
	GetPattern(ctx context.Context, id string) (application.RecurrencePattern, error)
	UpdatePattern(ctx context.Context, id string, input application.PatternInput) (application.RecurrencePattern, error)
	DeletePattern(ctx context.Context, id string) error
	ListPatterns(ctx context.Context) ([]application.RecurrencePattern, error)
}

type PatternHandler struct {
	service   patternService
	responder responder
}

func NewPatternHandler(service patternService, logger *slog.Logger) *PatternHandler {
	return &PatternHandler{service: service, responder: newResponder(logger)}
}

func (h *PatternHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	pattern, err := h.service.CreatePattern(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toPatternDTO(pattern))
}

func (h *PatternHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	pattern, err := h.service.GetPattern(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPatternDTO(pattern))
}

func (h *PatternHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	pattern, err := h.service.UpdatePattern(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPatternDTO(pattern))
}

func (h *PatternHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.service.DeletePattern(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *PatternHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	patterns, err := h.service.ListPatterns(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPatternsResponse{
		Patterns: toPatternDTOs(patterns),
	})
}

func (h *PatternHandler) decode(w http.ResponseWriter, r *http.Request) (patternRequest, bool) {
	var req patternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return patternRequest{}, false
	}
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	if vErr := validateRequest(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return patternRequest{}, false
	}
	return req, true
}

type patternRequest struct {
	Type            string `json:"type" validate:"required,oneof=daily weekly monthly"`
	IntervalValue   int    `json:"interval_value" validate:"gte=0"`
	DaysOfWeek      string `json:"days_of_week"`
	DayOfMonth      int    `json:"day_of_month" validate:"gte=0,lte=31"`
	OccurrenceCount int    `json:"occurrence_count" validate:"gte=0"`
	EndsOn          string `json:"ends_on"`
}

func (r patternRequest) toInput() application.PatternInput {
	return application.PatternInput{
		Type:            r.Type,
		IntervalValue:   r.IntervalValue,
		DaysOfWeek:      r.DaysOfWeek,
		DayOfMonth:      r.DayOfMonth,
		OccurrenceCount: r.OccurrenceCount,
		EndsOn:          parseTimestamp(r.EndsOn),
	}
}

type patternDTO struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	IntervalValue   int    `json:"interval_value"`
	DaysOfWeek      string `json:"days_of_week,omitempty"`
	DayOfMonth      int    `json:"day_of_month,omitempty"`
	OccurrenceCount int    `json:"occurrence_count,omitempty"`
	EndsOn          string `json:"ends_on,omitempty"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type listPatternsResponse struct {
	Patterns []patternDTO `json:"patterns"`
}

func toPatternDTO(pattern application.RecurrencePattern) patternDTO {
	dto := patternDTO{
		ID:              pattern.ID,
		Type:            pattern.Type,
		IntervalValue:   pattern.IntervalValue,
		DaysOfWeek:      pattern.DaysOfWeek,
		DayOfMonth:      pattern.DayOfMonth,
		OccurrenceCount: pattern.OccurrenceCount,
		CreatedAt:       pattern.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       pattern.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if pattern.EndsOn != nil {
		dto.EndsOn = pattern.EndsOn.UTC().Format(time.RFC3339)
	}
	return dto
}

func toPatternDTOs(patterns []application.RecurrencePattern) []patternDTO {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]patternDTO, 0, len(patterns))
	for _, pattern := range patterns {
		out = append(out, toPatternDTO(pattern))
	}
	return out
}

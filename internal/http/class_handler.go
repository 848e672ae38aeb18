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

type classService interface {
	CreateClass(ctx context.Context, input application.ClassInput) (application.ClassDefinition, error)
	GetClass(ctx context.Context, id string) (application.ClassDefinition, error)
	UpdateClass(ctx context.Context, id string, input application.ClassInput) (application.ClassDefinition, error)
	DeleteClass(ctx context.Context, id string) error
	ListClasses(ctx context.Context) ([]application.ClassDefinition, error)
}

type ClassHandler struct {
	service   classService
	responder responder
}

func NewClassHandler(service classService, logger *slog.Logger) *ClassHandler {
	return &ClassHandler{service: service, responder: newResponder(logger)}
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	class, err := h.service.CreateClass(r.Context(), req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toClassDTO(class))
}

func (h *ClassHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	class, err := h.service.GetClass(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toClassDTO(class))
}

func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	class, err := h.service.UpdateClass(r.Context(), id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toClassDTO(class))
}

func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	if err := h.service.DeleteClass(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	classes, err := h.service.ListClasses(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listClassesResponse{
		Classes: toClassDTOs(classes),
	})
}

func (h *ClassHandler) decode(w http.ResponseWriter, r *http.Request) (classRequest, bool) {
	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return classRequest{}, false
	}
	if vErr := validateRequest(req); vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return classRequest{}, false
	}
	return req, true
}

type classRequest struct {
	Title               string  `json:"title" validate:"required"`
	InstructorID        string  `json:"instructor_id" validate:"required"`
	StartTime           string  `json:"start_time" validate:"required"`
	EndTime             string  `json:"end_time" validate:"required"`
	Capacity            int     `json:"capacity" validate:"gte=0"`
	Active              bool    `json:"active"`
	RecurrencePatternID *string `json:"recurrence_pattern_id"`
}

func (r classRequest) toInput() application.ClassInput {
	return application.ClassInput{
		Title:               strings.TrimSpace(r.Title),
		InstructorID:        strings.TrimSpace(r.InstructorID),
		StartTime:           strings.TrimSpace(r.StartTime),
		EndTime:             strings.TrimSpace(r.EndTime),
		Capacity:            r.Capacity,
		Active:              r.Active,
		RecurrencePatternID: r.RecurrencePatternID,
	}
}

type classDTO struct {
	ID                  string  `json:"id"`
	Title               string  `json:"title"`
	InstructorID        string  `json:"instructor_id"`
	StartTime           string  `json:"start_time"`
	EndTime             string  `json:"end_time"`
	Capacity            int     `json:"capacity"`
	Active              bool    `json:"active"`
	RecurrencePatternID *string `json:"recurrence_pattern_id,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type listClassesResponse struct {
	Classes []classDTO `json:"classes"`
}

func toClassDTO(class application.ClassDefinition) classDTO {
	return classDTO{
		ID:                  class.ID,
		Title:               class.Title,
		InstructorID:        class.InstructorID,
		StartTime:           class.StartTime,
		EndTime:             class.EndTime,
		Capacity:            class.Capacity,
		Active:              class.Active,
		RecurrencePatternID: class.RecurrencePatternID,
		CreatedAt:           class.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           class.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toClassDTOs(classes []application.ClassDefinition) []classDTO {
	if len(classes) == 0 {
		return nil
	}
	out := make([]classDTO, 0, len(classes))
	for _, class := range classes {
		out = append(out, toClassDTO(class))
	}
	return out
}

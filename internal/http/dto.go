package http

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/classtrack/internal/application"
)

// validate checks request DTO shape before the application layer sees the
// input. Field names in reported errors follow the json tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest runs struct validation and converts failures into the
// application layer's field-keyed form so the responder renders them the
// same way as service side validation errors.
func validateRequest(req any) *application.ValidationError {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	details := make(map[string]string)
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fieldErr := range vErrs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
	} else {
		details["request"] = "request shape is invalid"
	}
	return &application.ValidationError{FieldErrors: details}
}

func validationMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fieldErr.Param(), " ", ", ")
	case "gte":
		return "must be at least " + fieldErr.Param()
	case "lte":
		return "must be at most " + fieldErr.Param()
	default:
		return "is invalid"
	}
}

func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return &ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts
	}
	if ts, err := time.Parse(time.DateOnly, value); err == nil {
		return &ts
	}
	return nil
}

func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339)
}

type sessionDTO struct {
	ID           string  `json:"id"`
	ClassID      string  `json:"class_id"`
	InstructorID string  `json:"instructor_id"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Timezone     string  `json:"timezone"`
	Status       string  `json:"status"`
	CancelReason *string `json:"cancel_reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toSessionDTO(session application.ScheduledSession) sessionDTO {
	return sessionDTO{
		ID:           session.ID,
		ClassID:      session.ClassID,
		InstructorID: session.InstructorID,
		Start:        formatTimestamp(session.Start),
		End:          formatTimestamp(session.End),
		Timezone:     session.Timezone,
		Status:       session.Status,
		CancelReason: session.CancelReason,
		CreatedAt:    formatTimestamp(session.CreatedAt),
		UpdatedAt:    formatTimestamp(session.UpdatedAt),
	}
}

func toSessionDTOs(sessions []application.ScheduledSession) []sessionDTO {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	return out
}

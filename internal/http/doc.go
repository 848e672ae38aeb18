// Package http provides HTTP handlers and middleware for the classtrack API.
//
// The router exposes the following endpoints:
//   - GET /instructors, POST /instructors, GET /instructors/{id},
//     DELETE /instructors/{id}: instructor registry endpoints exchanging the
//     `instructorDTO` payload defined in instructor_handler.go.
//   - GET /patterns, POST /patterns, GET /patterns/{id}, PUT /patterns/{id},
//     DELETE /patterns/{id}: recurrence pattern catalog endpoints exchanging
//     the `patternDTO` payload defined in pattern_handler.go.
//   - GET /classes, POST /classes, GET /classes/{id}, PUT /classes/{id},
//     DELETE /classes/{id}: class definition endpoints exchanging the
//     `classDTO` payload defined in class_handler.go.
//   - POST /classes/{id}/schedule: materializes the class's recurring
//     schedule over an optional window and returns created sessions plus
//     skipped occurrences.
//   - PUT /classes/{id}/schedule: cancels the class's future sessions and
//     regenerates them from the current pattern.
//   - DELETE /classes/{id}/schedule: cancels the class's still scheduled
//     sessions. Body: {"reason"}.
//   - GET /sessions, GET /sessions/{id}: read surface over materialized
//     sessions with class/instructor/status/time filters.
//   - DELETE /sessions/{id}: cancels a single session. Body: {"reason"}.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http

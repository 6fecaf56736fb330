// Package httputil centralizes JSON response writing so every handler emits
// the same envelope: {"success": true, "message": ..., "data": ...} on
// success and {"success": false, "message": ...} on failure, with an optional
// per-field "errors" map for validation failures.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "newsdesk/pkg/domain-errors"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Meta    *Meta             `json:"meta,omitempty"`
}

// Meta carries pagination facts for list responses.
type Meta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

// NewMeta derives pagination metadata from a total count and page inputs.
func NewMeta(page, perPage, total int) *Meta {
	lastPage := 1
	if perPage > 0 {
		lastPage = (total + perPage - 1) / perPage
		if lastPage < 1 {
			lastPage = 1
		}
	}
	return &Meta{CurrentPage: page, LastPage: lastPage, PerPage: perPage, Total: total}
}

// WriteJSON writes an arbitrary payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteList writes a success envelope with pagination metadata.
func WriteList(w http.ResponseWriter, message string, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Meta: meta})
}

// WriteError maps a domain error to an HTTP status and failure envelope.
// Internal error detail is never serialized; callers get a generic message
// while the original error stays in logs.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := StatusFor(code)

	env := Envelope{Success: false, Message: dErrors.MessageOf(err)}
	if code == dErrors.CodeInternal {
		env.Message = "internal error"
	}
	if fields := dErrors.FieldsOf(err); len(fields) > 0 {
		env.Errors = fields
	}
	WriteJSON(w, status, env)
}

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeValidation, dErrors.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorCode represents API error codes
type ErrorCode int

const (
	// Resource errors (3xxx)
	ErrCodeNotFound ErrorCode = 3001
	ErrCodeConflict ErrorCode = 3002

	// Validation errors (4xxx)
	ErrCodeValidation   ErrorCode = 4001
	ErrCodeInvalidInput ErrorCode = 4002

	// Internal errors (5xxx)
	ErrCodeInternal    ErrorCode = 5001
	ErrCodeUnavailable ErrorCode = 5002
)

const problemTypeBase = "https://authuser.ead.dev/errors/"

// ProblemDetails represents RFC 9457 Problem Details for HTTP APIs
type ProblemDetails struct {
	Type     string       `json:"type"`
	Title    string       `json:"title"`
	Status   int          `json:"status"`
	Detail   string       `json:"detail,omitempty"`
	Instance string       `json:"instance,omitempty"`
	Errors   []FieldError `json:"errors,omitempty"`
	// Extension fields
	Code ErrorCode `json:"code,omitempty"`
}

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (p *ProblemDetails) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

// WriteJSON writes the problem details as JSON response
func (p *ProblemDetails) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// newProblem fills Title from the status text
func newProblem(status int, slug string, code ErrorCode, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:   problemTypeBase + slug,
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Code:   code,
	}
}

// NewNotFoundError reports a missing resource, e.g. NewNotFoundError("User")
func NewNotFoundError(resource string) *ProblemDetails {
	return newProblem(http.StatusNotFound, "not-found", ErrCodeNotFound, resource+" not found")
}

// NewConflictError reports a uniqueness violation
func NewConflictError(detail string) *ProblemDetails {
	return newProblem(http.StatusConflict, "conflict", ErrCodeConflict, detail)
}

// NewValidationError summarizes field errors in Detail and lists them all
// in Errors.
func NewValidationError(fields []FieldError) *ProblemDetails {
	var detail string
	switch len(fields) {
	case 0:
		detail = "One or more fields failed validation"
	case 1:
		detail = fields[0].Field + ": " + fields[0].Message
	default:
		detail = fmt.Sprintf("%s: %s (and %d more errors)", fields[0].Field, fields[0].Message, len(fields)-1)
	}
	pd := newProblem(http.StatusUnprocessableEntity, "validation", ErrCodeValidation, detail)
	pd.Title = "Validation Error"
	pd.Errors = fields
	return pd
}

// NewInternalError hides the cause; an empty detail gets a generic message
func NewInternalError(detail string) *ProblemDetails {
	if detail == "" {
		detail = "An unexpected error occurred"
	}
	return newProblem(http.StatusInternalServerError, "internal", ErrCodeInternal, detail)
}

// NewBadRequestError reports malformed input such as a bad id or query parameter
func NewBadRequestError(detail string) *ProblemDetails {
	return newProblem(http.StatusBadRequest, "bad-request", ErrCodeInvalidInput, detail)
}

// NewServiceUnavailableError reports an unreachable backing store
func NewServiceUnavailableError(detail string) *ProblemDetails {
	return newProblem(http.StatusServiceUnavailable, "unavailable", ErrCodeUnavailable, detail)
}

// NewRateLimitError carries no code; Retry-After is set by the caller
func NewRateLimitError(retryAfter int) *ProblemDetails {
	return newProblem(http.StatusTooManyRequests, "rate-limited", 0,
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds", retryAfter))
}

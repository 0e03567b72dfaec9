package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Constructors
// ============================================================================

func TestProblemConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		pd     *ProblemDetails
		status int
		title  string
		code   ErrorCode
		detail string
		slug   string
	}{
		{"not found", NewNotFoundError("User"), http.StatusNotFound, "Not Found", ErrCodeNotFound, "User not found", "not-found"},
		{"conflict", NewConflictError("userName already taken"), http.StatusConflict, "Conflict", ErrCodeConflict, "userName already taken", "conflict"},
		{"bad request", NewBadRequestError("userId must be a valid UUID"), http.StatusBadRequest, "Bad Request", ErrCodeInvalidInput, "userId must be a valid UUID", "bad-request"},
		{"internal default", NewInternalError(""), http.StatusInternalServerError, "Internal Server Error", ErrCodeInternal, "An unexpected error occurred", "internal"},
		{"internal custom", NewInternalError("boom"), http.StatusInternalServerError, "Internal Server Error", ErrCodeInternal, "boom", "internal"},
		{"unavailable", NewServiceUnavailableError("store unreachable"), http.StatusServiceUnavailable, "Service Unavailable", ErrCodeUnavailable, "store unreachable", "unavailable"},
		{"rate limited", NewRateLimitError(30), http.StatusTooManyRequests, "Too Many Requests", 0, "Rate limit exceeded. Retry after 30 seconds", "rate-limited"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.pd.Status)
			assert.Equal(t, tt.title, tt.pd.Title)
			assert.Equal(t, tt.code, tt.pd.Code)
			assert.Equal(t, tt.detail, tt.pd.Detail)
			assert.Equal(t, problemTypeBase+tt.slug, tt.pd.Type)
		})
	}
}

func TestNewValidationError_Detail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		fields []FieldError
		want   string
	}{
		{"no fields", nil, "One or more fields failed validation"},
		{"one field", []FieldError{{Field: "fullName", Message: "must be at most 150 characters"}}, "fullName: must be at most 150 characters"},
		{"several fields", []FieldError{
			{Field: "fullName", Message: "too long"},
			{Field: "cpf", Message: "too long"},
			{Field: "phoneNumber", Message: "too long"},
		}, "fullName: too long (and 2 more errors)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pd := NewValidationError(tt.fields)

			assert.Equal(t, http.StatusUnprocessableEntity, pd.Status)
			assert.Equal(t, "Validation Error", pd.Title)
			assert.Equal(t, ErrCodeValidation, pd.Code)
			assert.Equal(t, tt.want, pd.Detail)
			assert.Equal(t, tt.fields, pd.Errors)
		})
	}
}

// ============================================================================
// error interface
// ============================================================================

func TestProblemDetails_Error(t *testing.T) {
	t.Parallel()

	pd := NewNotFoundError("User")

	assert.Equal(t, "[404] Not Found: User not found", pd.Error())
}

func TestProblemDetails_UnwrapsThroughErrorsAs(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("update user: %w", NewConflictError("email already registered"))

	var pd *ProblemDetails
	require.True(t, errors.As(err, &pd))
	assert.Equal(t, http.StatusConflict, pd.Status)
}

// ============================================================================
// WriteJSON
// ============================================================================

func TestProblemDetails_WriteJSON(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewValidationError([]FieldError{{Field: "cpf", Message: "too long"}}).WriteJSON(rr)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Validation Error", body["title"])
	assert.Equal(t, float64(ErrCodeValidation), body["code"])
	assert.NotContains(t, body, "instance")
	assert.Equal(t, []any{map[string]any{"field": "cpf", "message": "too long"}}, body["errors"])
}

func TestProblemDetails_WriteJSON_OmitsZeroCode(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	NewRateLimitError(5).WriteJSON(rr)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotContains(t, body, "code")
	assert.NotContains(t, body, "errors")
}

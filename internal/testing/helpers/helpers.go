// Package helpers provides common test utilities for HTTP handler tests.
package helpers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ead/authuser/internal/model"
)

// ============================================================================
// Requests
// ============================================================================

// RequestBuilder assembles an *http.Request for handler tests
type RequestBuilder struct {
	t      *testing.T
	method string
	target string
	body   io.Reader
	header http.Header
}

// NewRequest starts a request for method and target (path plus query)
func NewRequest(t *testing.T, method, target string) *RequestBuilder {
	t.Helper()
	return &RequestBuilder{t: t, method: method, target: target, header: http.Header{}}
}

// WithBody JSON-encodes v as the request body
func (rb *RequestBuilder) WithBody(v any) *RequestBuilder {
	rb.t.Helper()
	buf, err := json.Marshal(v)
	require.NoError(rb.t, err, "helpers: encode request body")
	rb.body = bytes.NewReader(buf)
	return rb
}

// WithRawBody sends s unmodified, for malformed-payload cases
func (rb *RequestBuilder) WithRawBody(s string) *RequestBuilder {
	rb.body = strings.NewReader(s)
	return rb
}

// WithHeader sets a request header
func (rb *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	rb.header.Set(key, value)
	return rb
}

// Build returns the request. Requests with a body are sent as JSON unless a
// Content-Type header was set explicitly.
func (rb *RequestBuilder) Build() *http.Request {
	rb.t.Helper()

	req := httptest.NewRequest(rb.method, rb.target, rb.body)
	if rb.body != nil && rb.header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range rb.header {
		req.Header[k] = vs
	}
	return req
}

// ============================================================================
// Assertions
// ============================================================================

// AssertStatus checks the status code and prints the body on mismatch
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	assert.Equal(t, want, rr.Code, "unexpected status, body: %s", rr.Body.String())
}

// AssertPlainText checks a text/plain response and its trimmed body
func AssertPlainText(t *testing.T, rr *httptest.ResponseRecorder, status int, body string) {
	t.Helper()
	AssertStatus(t, rr, status)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/plain"),
		"expected text/plain, got %q", rr.Header().Get("Content-Type"))
	assert.Equal(t, body, strings.TrimSpace(rr.Body.String()))
}

// AssertProblemDetails decodes an RFC 9457 body and checks status and code.
// A zero code skips the code check.
func AssertProblemDetails(t *testing.T, rr *httptest.ResponseRecorder, status int, code model.ErrorCode) *model.ProblemDetails {
	t.Helper()
	AssertStatus(t, rr, status)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	var problem model.ProblemDetails
	DecodeResponse(t, rr, &problem)
	assert.Equal(t, status, problem.Status)
	if code != 0 {
		assert.Equal(t, code, problem.Code)
	}
	return &problem
}

// AssertValidationError checks for a 422 naming field among its errors
func AssertValidationError(t *testing.T, rr *httptest.ResponseRecorder, field string) {
	t.Helper()
	problem := AssertProblemDetails(t, rr, http.StatusUnprocessableEntity, model.ErrCodeValidation)

	fields := make([]string, 0, len(problem.Errors))
	for _, fe := range problem.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, field)
}

// ============================================================================
// Decoding
// ============================================================================

// DecodeResponse unmarshals the recorded body into v
func DecodeResponse(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), "body: %s", rr.Body.String())
}

// GetDataFromResponse returns the "data" object of an envelope response
func GetDataFromResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	DecodeResponse(t, rr, &env)
	return env.Data
}

// GetLinksFromResponse returns the top-level "_links" map
func GetLinksFromResponse(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var env struct {
		Links map[string]string `json:"_links"`
	}
	DecodeResponse(t, rr, &env)
	return env.Links
}

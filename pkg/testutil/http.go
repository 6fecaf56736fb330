// Package testutil provides common test utilities for handler and integration tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envelope mirrors the uniform response body with the data payload kept raw
// so callers can decode it into whatever shape the endpoint returns.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
	Meta    *struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
		PerPage     int `json:"per_page"`
		Total       int `json:"total"`
	} `json:"meta"`
}

// NewJSONRequest creates an HTTP request with JSON body.
// The body is marshaled to JSON automatically.
func NewJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewRequest creates a simple HTTP request without a body.
func NewRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

// NewRequestWithBody creates an HTTP request with a string body.
func NewRequestWithBody(t *testing.T, method, path string, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DoRequest executes a request against a handler and returns the recorder.
func DoRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

// ReadBody reads the response body as bytes without draining the recorder,
// so the envelope can be inspected more than once.
func ReadBody(t *testing.T, rr *httptest.ResponseRecorder) []byte {
	t.Helper()
	return rr.Body.Bytes()
}

func unmarshalEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(ReadBody(t, rr), &env), "failed to unmarshal response envelope")
	return env
}

// DecodeData unmarshals the envelope's data payload into the target type.
func DecodeData[T any](t *testing.T, rr *httptest.ResponseRecorder) *T {
	t.Helper()
	env := unmarshalEnvelope(t, rr)
	require.NotEmpty(t, env.Data, "response envelope has no data")
	var result T
	require.NoError(t, json.Unmarshal(env.Data, &result), "failed to unmarshal data payload")
	return &result
}

// AssertStatus asserts the response status code matches expected.
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, rr.Code, "unexpected status code")
}

// AssertSuccess asserts a success envelope carrying the expected message.
func AssertSuccess(t *testing.T, rr *httptest.ResponseRecorder, message string) {
	t.Helper()
	env := unmarshalEnvelope(t, rr)
	assert.True(t, env.Success, "expected a success envelope")
	assert.Equal(t, message, env.Message, "unexpected response message")
}

// AssertError asserts a failure envelope with the expected status and message.
func AssertError(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus int, message string) {
	t.Helper()
	AssertStatus(t, rr, expectedStatus)
	env := unmarshalEnvelope(t, rr)
	assert.False(t, env.Success, "expected a failure envelope")
	assert.Equal(t, message, env.Message, "unexpected error message")
}

// AssertFieldError asserts the failure envelope carries a per-field message.
func AssertFieldError(t *testing.T, rr *httptest.ResponseRecorder, field, message string) {
	t.Helper()
	env := unmarshalEnvelope(t, rr)
	assert.Equal(t, message, env.Errors[field], "unexpected message for field %q", field)
}

// AssertMeta asserts the pagination metadata of a list response.
func AssertMeta(t *testing.T, rr *httptest.ResponseRecorder, page, perPage, total int) {
	t.Helper()
	env := unmarshalEnvelope(t, rr)
	require.NotNil(t, env.Meta, "expected pagination metadata")
	assert.Equal(t, page, env.Meta.CurrentPage, "unexpected current page")
	assert.Equal(t, perPage, env.Meta.PerPage, "unexpected page size")
	assert.Equal(t, total, env.Meta.Total, "unexpected total")
}

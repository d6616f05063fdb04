// Package testutil holds helpers shared by the HTTP-level test suites.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hawaiibiz/intel/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope is dto.Response with a typed payload
type Envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

// Request describes one call against an http.Handler
type Request struct {
	Method  string
	Path    string
	Body    any
	Token   string
	Headers map[string]string
}

// Serve runs req through h and returns the recorded response
func Serve(t *testing.T, h http.Handler, req Request) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if req.Body != nil {
		body = ToJSONReader(t, req.Body)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	r := httptest.NewRequest(method, req.Path, body)
	if req.Body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// Decode parses the envelope of a recorded response
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) Envelope[T] {
	t.Helper()

	var env Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "Failed to parse envelope: %s", w.Body.String())
	return env
}

// AssertSuccess checks status and a successful envelope, returning its data
func AssertSuccess[T any](t *testing.T, w *httptest.ResponseRecorder, status int) Envelope[T] {
	t.Helper()

	require.Equal(t, status, w.Code, "Unexpected status: %s", w.Body.String())
	env := Decode[T](t, w)
	assert.True(t, env.Success, "Expected success to be true")
	assert.Nil(t, env.Error, "Expected no error")
	return env
}

// AssertError checks status and the error code of a failed envelope
func AssertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, w.Code, "Unexpected status: %s", w.Body.String())
	env := Decode[json.RawMessage](t, w)
	assert.False(t, env.Success, "Expected success to be false")
	require.NotNil(t, env.Error, "Expected error object in response")
	assert.Equal(t, code, env.Error.Code, "Unexpected error code")
}

// ToJSONReader converts a value to a JSON io.Reader
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "Failed to marshal to JSON")
	return bytes.NewReader(data)
}

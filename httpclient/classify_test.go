package httpclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected Category
	}{
		{"401 unauthorized", 401, CategoryUnauthorized},
		{"403 forbidden", 403, CategoryForbidden},
		{"404 not found", 404, CategoryNotFound},
		{"429 server rate limit", 429, CategoryRateLimitServer},
		{"500 server error", 500, CategoryServerError},
		{"502 bad gateway", 502, CategoryServerError},
		{"503 unavailable", 503, CategoryServerError},
		{"400 bad request", 400, CategoryClientError},
		{"409 conflict", 409, CategoryClientError},
		{"422 unprocessable", 422, CategoryClientError},
		{"499 client closed", 499, CategoryClientError},
		{"301 redirect", 301, CategoryOther},
		{"204 no content", 204, CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &Response{StatusCode: tt.status}
			assert.Equal(t, tt.expected, Classify(resp, nil))
		})
	}
}

func TestClassifyAdmissionRejectionWinsOverEverything(t *testing.T) {
	err := NewAdmissionError("/data/x")

	// Even with a response attached, the local flag takes precedence.
	assert.Equal(t, CategoryRateLimitLocal, Classify(&Response{StatusCode: 500}, err))
	assert.Equal(t, CategoryRateLimitLocal, Classify(nil, err))
}

func TestClassifyTransportFailure(t *testing.T) {
	// No response object present means the transport failed.
	assert.Equal(t, CategoryNetworkError, Classify(nil, errors.New("connection refused")))
	assert.Equal(t, CategoryNetworkError, Classify(nil, NewNetworkError("dial failed", nil)))
	assert.Equal(t, CategoryNetworkError, Classify(nil, NewTimeoutError("deadline", 0)))
}

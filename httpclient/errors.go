package httpclient

import (
	"errors"
	"fmt"
	"time"
)

// ClientError represents the different failure modes of the resilient client.
type ClientError interface {
	error
	Type() ErrorType
	Category() Category
}

// ErrorType defines the mechanical kind of client error
type ErrorType string

const (
	AdmissionError  ErrorType = "admission"
	NetworkError    ErrorType = "network"
	TimeoutError    ErrorType = "timeout"
	HTTPError       ErrorType = "http"
	ValidationError ErrorType = "validation"
)

// admissionError marks a request rejected by the local admission gate.
// It never reaches the transport and is never retried.
type admissionError struct {
	endpoint string
}

func (e *admissionError) Error() string {
	return fmt.Sprintf("admission rejected: local rate limit exceeded for %s", e.endpoint)
}

func (e *admissionError) Type() ErrorType    { return AdmissionError }
func (e *admissionError) Category() Category { return CategoryRateLimitLocal }

// networkError represents transport-level failures
type networkError struct {
	message string
	wrapped error
}

func (e *networkError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("network error: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("network error: %s", e.message)
}

func (e *networkError) Type() ErrorType    { return NetworkError }
func (e *networkError) Category() Category { return CategoryNetworkError }
func (e *networkError) Unwrap() error      { return e.wrapped }

// timeoutError represents transport timeouts. Timeouts classify as network
// failures for retry purposes; the distinct type is kept for callers that
// care about the cause.
type timeoutError struct {
	message string
	timeout time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("timeout error: %s (timeout: %v)", e.message, e.timeout)
}

func (e *timeoutError) Type() ErrorType    { return TimeoutError }
func (e *timeoutError) Category() Category { return CategoryNetworkError }

// httpError represents HTTP status-related failures
type httpError struct {
	message          string
	statusCode       int
	body             []byte
	fallbackEligible bool
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP error: %s (status: %d)", e.message, e.statusCode)
}

func (e *httpError) Type() ErrorType    { return HTTPError }
func (e *httpError) Category() Category { return classifyStatus(e.statusCode) }
func (e *httpError) StatusCode() int    { return e.statusCode }
func (e *httpError) Body() []byte       { return e.body }

// validationError represents request validation errors
type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType    { return ValidationError }
func (e *validationError) Category() Category { return CategoryOther }

// NewAdmissionError creates the terminal error for a locally rejected request
func NewAdmissionError(endpoint string) ClientError {
	return &admissionError{endpoint: endpoint}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, wrapped error) ClientError {
	return &networkError{message: message, wrapped: wrapped}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, timeout time.Duration) ClientError {
	return &timeoutError{message: message, timeout: timeout}
}

// NewHTTPError creates a new HTTP status error
func NewHTTPError(message string, statusCode int, body []byte) ClientError {
	return &httpError{message: message, statusCode: statusCode, body: body}
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{message: message, field: field}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsCategory checks if an error belongs to a specific failure category
func IsCategory(err error, category Category) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Category() == category
	}
	return false
}

// IsHTTPStatusError checks if an error is an HTTP error with a specific status code
func IsHTTPStatusError(err error, statusCode int) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode() == statusCode
	}
	return false
}

// IsFallbackEligible reports whether a NotFound error hit an administrative
// endpoint backed by local fallback data. Callers may render the fallback
// instead of an error state.
func IsFallbackEligible(err error) bool {
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return httpErr.fallbackEligible
	}
	return false
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

package httpclient

import nethttp "net/http"

// Category is the failure category assigned to a completed or failed
// response. Categories drive the retry orchestrator's policy table.
type Category string

const (
	CategoryRateLimitLocal  Category = "rate_limit_local"
	CategoryRateLimitServer Category = "rate_limit_server"
	CategoryUnauthorized    Category = "unauthorized"
	CategoryForbidden       Category = "forbidden"
	CategoryNotFound        Category = "not_found"
	CategoryServerError     Category = "server_error"
	CategoryNetworkError    Category = "network_error"
	CategoryClientError     Category = "client_error"
	CategoryOther           Category = "other"
)

// Classify assigns a failure category to a completed response or transport
// failure. First match wins:
//
//  1. Locally rejected admission -> CategoryRateLimitLocal
//  2. HTTP 401 -> CategoryUnauthorized
//  3. HTTP 403 -> CategoryForbidden
//  4. HTTP 404 -> CategoryNotFound
//  5. HTTP 429 -> CategoryRateLimitServer
//  6. No response present (transport failure) -> CategoryNetworkError
//  7. HTTP status >= 500 -> CategoryServerError
//  8. HTTP status in [400,500) -> CategoryClientError
//  9. Otherwise -> CategoryOther, treated as success upstream
//
// Classify is not invoked on 2xx responses; success resets the shared
// retry counter instead.
func Classify(resp *Response, err error) Category {
	if IsErrorType(err, AdmissionError) {
		return CategoryRateLimitLocal
	}
	if resp == nil {
		return CategoryNetworkError
	}
	return classifyStatus(resp.StatusCode)
}

func classifyStatus(status int) Category {
	switch {
	case status == nethttp.StatusUnauthorized:
		return CategoryUnauthorized
	case status == nethttp.StatusForbidden:
		return CategoryForbidden
	case status == nethttp.StatusNotFound:
		return CategoryNotFound
	case status == nethttp.StatusTooManyRequests:
		return CategoryRateLimitServer
	case status >= 500:
		return CategoryServerError
	case status >= 400:
		return CategoryClientError
	default:
		return CategoryOther
	}
}

package httpclient

import (
	"context"
	nethttp "net/http"
	"time"

	"github.com/draftline/httpkit/trace"
)

// HeaderXRequestID is the header carrying the per-attempt correlation ID.
const HeaderXRequestID = trace.HeaderXRequestID

// Credential store keys used by the request tagger and the unauthorized flow.
const (
	KeyAuthToken = "auth_token"
	KeyUserData  = "user_data"
)

// Client defines the REST client interface for making HTTP requests
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
}

// Request represents an outbound HTTP request before tagging.
type Request struct {
	// Path is the endpoint path, resolved against the configured base URL.
	// An absolute http(s) URL is used as-is.
	Path    string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response with tracking information
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains request execution statistics
type Stats struct {
	ElapsedTime time.Duration
	// Attempts is the number of transport attempts made, including retries.
	Attempts int
	// CallCount is the client-lifetime ordinal of the originating call.
	CallCount int64
}

// CredentialStore is the persisted key-value surface holding session
// credentials. The tagger reads KeyAuthToken on every request; the
// unauthorized flow removes KeyAuthToken and KeyUserData.
type CredentialStore interface {
	Get(key string) (string, bool)
	Remove(key string)
}

// Notifier receives human-readable status for the user-facing surface
// (toasts, status bar). Calls are fire-and-forget.
type Notifier interface {
	NotifyError(message string)
	NotifyInfo(message string)
}

// Navigator abstracts the host application's navigation. Only the
// unauthorized flow uses it.
type Navigator interface {
	RedirectTo(path string)
	CurrentPath() string
}

// Config holds the resilient client configuration
type Config struct {
	// BaseURL is prepended to relative request paths.
	BaseURL string
	// Timeout bounds each transport attempt.
	Timeout time.Duration
	// MaxRetries bounds retries for network and 5xx failures. The bound is
	// shared across all concurrent requests.
	MaxRetries int
	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration
	// DefaultHeaders are sent with every request.
	DefaultHeaders map[string]string
	// LogPayloads enables debug-level logging of request/response bodies.
	LogPayloads bool

	// LoginPath is the auth entry point the unauthorized flow redirects to.
	LoginPath string
	// AuthPathSegment marks paths already inside the auth flow; when the
	// current path contains it, no redirect is issued.
	AuthPathSegment string
	// RedirectDelay is how long the unauthorized flow waits before
	// redirecting, giving the notification time to render.
	RedirectDelay time.Duration

	// AdminPathPrefix marks administrative endpoints with local fallback
	// data; 404s on these paths are not surfaced to the user.
	AdminPathPrefix string

	// ServerRetryDelay applies to 429 responses without a Retry-After header.
	ServerRetryDelay time.Duration
	// TrimOnServerLimit is how many admission records survive when the
	// server signals backpressure.
	TrimOnServerLimit int

	// NewCorrelationID generates the per-attempt correlation ID
	// (default: uuid via the trace package).
	NewCorrelationID func() string
}

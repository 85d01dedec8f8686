package httpclient

import (
	"context"
	"errors"
	"io"
	"net"
	nethttp "net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/draftline/httpkit/config"
	"github.com/draftline/httpkit/httpclient/internal/tracking"
	"github.com/draftline/httpkit/logger"
	"github.com/draftline/httpkit/ratelimit"
	"github.com/draftline/httpkit/trace"
)

const (
	// DefaultTimeout is the default per-attempt timeout
	DefaultTimeout = 30 * time.Second

	// DefaultLoginPath is the auth entry point for the unauthorized flow
	DefaultLoginPath = "/login"

	// DefaultAuthPathSegment marks paths already inside the auth flow
	DefaultAuthPathSegment = "login"

	// DefaultAdminPathPrefix marks endpoints with local fallback data
	DefaultAdminPathPrefix = "/admin"
)

// defaultCriticalPaths are always admitted by the gate.
var defaultCriticalPaths = []string{"/auth/login", "/auth/refresh", "/health"}

// client implements the Client interface
type client struct {
	httpClient *nethttp.Client
	logger     logger.Logger
	config     *Config
	gate       *ratelimit.Gate
	creds      CredentialStore
	notifier   Notifier
	nav        Navigator
	retries    *retryCounter
	callCount  int64

	// Deduplicated notifications already shown this client lifetime.
	shownMu sync.Mutex
	shown   map[string]struct{}

	// Injection points for deterministic tests.
	sleep         func(ctx context.Context, d time.Duration) error
	redirectTimer func(d time.Duration, f func())
}

// NewClient creates a resilient client with default configuration
func NewClient(log logger.Logger) Client {
	return NewBuilder(log).Build()
}

// Builder provides a fluent interface for configuring the resilient client
type Builder struct {
	config     *Config
	logger     logger.Logger
	gate       *ratelimit.Gate
	creds      CredentialStore
	notifier   Notifier
	nav        Navigator
	httpClient *nethttp.Client
	transport  nethttp.RoundTripper
}

// NewBuilder creates a new client builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		config: &Config{
			Timeout:           DefaultTimeout,
			MaxRetries:        DefaultMaxRetries,
			RetryDelay:        DefaultRetryDelay,
			DefaultHeaders:    make(map[string]string),
			LoginPath:         DefaultLoginPath,
			AuthPathSegment:   DefaultAuthPathSegment,
			RedirectDelay:     DefaultRedirectDelay,
			AdminPathPrefix:   DefaultAdminPathPrefix,
			ServerRetryDelay:  DefaultServerRetryDelay,
			TrimOnServerLimit: DefaultTrimOnServerLimit,
			NewCorrelationID:  trace.NewCorrelationID,
		},
		logger: log,
	}
}

// WithConfig applies the loaded application configuration surface.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.config.BaseURL = cfg.API.BaseURL
	b.config.Timeout = cfg.API.Timeout
	b.config.MaxRetries = cfg.API.Retry.Attempts
	b.config.RetryDelay = cfg.API.Retry.Delay
	b.gate = ratelimit.New(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests, cfg.RateLimit.CriticalPaths)
	return b
}

// WithBaseURL sets the base URL for relative request paths
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithTimeout sets the per-attempt timeout
func (b *Builder) WithTimeout(timeout time.Duration) *Builder {
	b.config.Timeout = timeout
	return b
}

// WithRetries sets the shared retry budget and the backoff base delay
func (b *Builder) WithRetries(maxRetries int, retryDelay time.Duration) *Builder {
	b.config.MaxRetries = maxRetries
	b.config.RetryDelay = retryDelay
	return b
}

// WithDefaultHeader adds a header sent with all requests
func (b *Builder) WithDefaultHeader(key, value string) *Builder {
	b.config.DefaultHeaders[key] = value
	return b
}

// WithAdmissionGate sets a custom admission gate
func (b *Builder) WithAdmissionGate(gate *ratelimit.Gate) *Builder {
	b.gate = gate
	return b
}

// WithCredentialStore sets the persisted credential surface
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.creds = store
	return b
}

// WithNotifier sets the user-facing notification sink
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithNavigator sets the navigation collaborator for the unauthorized flow
func (b *Builder) WithNavigator(nav Navigator) *Builder {
	b.nav = nav
	return b
}

// WithLoginPath sets the auth entry point and the path segment that marks
// the auth flow
func (b *Builder) WithLoginPath(path, segment string) *Builder {
	if path != "" {
		b.config.LoginPath = path
	}
	if segment != "" {
		b.config.AuthPathSegment = segment
	}
	return b
}

// WithRedirectDelay overrides the delay before the unauthorized redirect
func (b *Builder) WithRedirectDelay(d time.Duration) *Builder {
	if d > 0 {
		b.config.RedirectDelay = d
	}
	return b
}

// WithHTTPClient sets a custom *http.Client
func (b *Builder) WithHTTPClient(hc *nethttp.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithTransport sets a custom transport on the underlying client
func (b *Builder) WithTransport(rt nethttp.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithCorrelationIDGenerator overrides the per-attempt correlation ID source
func (b *Builder) WithCorrelationIDGenerator(gen func() string) *Builder {
	if gen != nil {
		b.config.NewCorrelationID = gen
	}
	return b
}

// WithPayloadLogging enables debug logging of request/response bodies
func (b *Builder) WithPayloadLogging(enabled bool) *Builder {
	b.config.LogPayloads = enabled
	return b
}

// Build creates the resilient client with the configured options
func (b *Builder) Build() Client {
	httpClient := b.httpClient
	if httpClient == nil {
		httpClient = &nethttp.Client{}
	}
	if httpClient.Timeout == 0 {
		httpClient.Timeout = b.config.Timeout
	}
	if b.transport != nil {
		httpClient.Transport = b.transport
	}

	gate := b.gate
	if gate == nil {
		gate = ratelimit.New(ratelimit.DefaultWindow, ratelimit.DefaultMaxRequests, defaultCriticalPaths)
	}

	creds := b.creds
	if creds == nil {
		creds = NewMemoryCredentialStore()
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = &logNotifier{log: b.logger}
	}

	nav := b.nav
	if nav == nil {
		nav = &noopNavigator{}
	}

	return &client{
		httpClient:    httpClient,
		logger:        b.logger,
		config:        b.config,
		gate:          gate,
		creds:         creds,
		notifier:      notifier,
		nav:           nav,
		retries:       &retryCounter{},
		shown:         make(map[string]struct{}),
		sleep:         sleepContext,
		redirectTimer: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Get performs a GET request
func (c *client) Get(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (c *client) Post(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (c *client) Put(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (c *client) Patch(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (c *client) Delete(ctx context.Context, req *Request) (*Response, error) {
	return c.Do(ctx, nethttp.MethodDelete, req)
}

// Do runs one request through the full pipeline: admission -> tagging ->
// transport -> classification -> retry decision, looping until the call
// succeeds, a terminal category is hit, or the retry budget is exhausted.
func (c *client) Do(ctx context.Context, method string, req *Request) (*Response, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()
	callCount := atomic.AddInt64(&c.callCount, 1)
	rctx := &requestContext{start: start, endpoint: req.Path}

	for attempt := 1; ; attempt++ {
		httpReq, err := c.tag(ctx, method, req, rctx)
		if err != nil {
			if IsErrorType(err, AdmissionError) {
				tracking.RecordAdmissionRejected(ctx, rctx.endpoint)
				dec := c.decide(CategoryRateLimitLocal, rctx, nil, err)
				c.logFailure(method, rctx, CategoryRateLimitLocal, dec.err)
				return nil, dec.err
			}
			return nil, err
		}

		c.logRequest(method, req, rctx)

		var resp *Response
		httpResp, err := c.httpClient.Do(httpReq)
		if err != nil {
			err = c.wrapTransportError(err)
		} else {
			resp, err = c.buildResponse(start, attempt, callCount, httpResp)
		}

		if err == nil && IsSuccessStatus(resp.StatusCode) {
			c.retries.reset()
			c.logResponse(resp, rctx)
			tracking.RecordRequest(ctx, method, rctx.endpoint, resp.StatusCode, time.Since(start))
			return resp, nil
		}

		cat := Classify(resp, err)
		if cat == CategoryOther {
			// Statuses outside the failure taxonomy (1xx/3xx) pass through
			// to the caller as success.
			c.retries.reset()
			c.logResponse(resp, rctx)
			return resp, nil
		}

		dec := c.decide(cat, rctx, resp, err)
		if !dec.retry {
			status := 0
			if resp != nil {
				status = resp.StatusCode
			}
			tracking.RecordRequest(ctx, method, rctx.endpoint, status, time.Since(start))
			c.logFailure(method, rctx, cat, dec.err)
			return resp, dec.err
		}

		tracking.RecordRetry(ctx, string(cat))
		c.logger.Debug().
			Str("endpoint", rctx.endpoint).
			Str("category", string(cat)).
			Dur("delay", dec.delay).
			Msg("Retrying request")

		if werr := c.sleep(ctx, dec.delay); werr != nil {
			return nil, NewNetworkError("request canceled during retry wait", werr)
		}
		rctx.retry = true
	}
}

// validateRequest validates the request before sending
func (c *client) validateRequest(req *Request) error {
	if req == nil {
		return NewValidationError("request cannot be nil", "request")
	}
	if req.Path == "" {
		return NewValidationError("path cannot be empty", "path")
	}
	return nil
}

// buildResponse reads the body and assembles a Response.
func (c *client) buildResponse(start time.Time, attempts int, callCount int64, httpResp *nethttp.Response) (*Response, error) {
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewNetworkError("failed to read response body", err)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
		Stats: Stats{
			ElapsedTime: time.Since(start),
			Attempts:    attempts,
			CallCount:   callCount,
		},
	}, nil
}

// wrapTransportError converts raw transport failures into typed errors.
func (c *client) wrapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request timeout", c.config.Timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewTimeoutError("request timeout", c.config.Timeout)
	}
	return NewNetworkError("request execution failed", err)
}

// sleepContext waits for the delay or the context, whichever ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// logRequest logs the outgoing request
func (c *client) logRequest(method string, req *Request, rctx *requestContext) {
	logEvent := c.logger.Info().
		Str("direction", "outbound").
		Str("method", method).
		Str("endpoint", rctx.endpoint).
		Str("correlation_id", rctx.correlationID)

	if rctx.retry {
		logEvent = logEvent.Int("retry_count", c.retries.value())
	}

	if c.config.LogPayloads && len(req.Body) > 0 {
		logEvent = logEvent.Bytes("body", req.Body)
	}

	logEvent.Msg("REST client request")
}

// logResponse logs the incoming response
func (c *client) logResponse(resp *Response, rctx *requestContext) {
	logEvent := c.logger.Info().
		Str("direction", "inbound").
		Str("correlation_id", rctx.correlationID).
		Int("status", resp.StatusCode).
		Dur("elapsed", resp.Stats.ElapsedTime).
		Int("attempts", resp.Stats.Attempts).
		Int64("call_count", resp.Stats.CallCount)

	if c.config.LogPayloads && len(resp.Body) > 0 {
		logEvent = logEvent.Bytes("body", resp.Body)
	}

	logEvent.Msg("REST client response")
}

// logFailure logs a terminal failure
func (c *client) logFailure(method string, rctx *requestContext, cat Category, err error) {
	c.logger.Error().
		Err(err).
		Str("method", method).
		Str("endpoint", rctx.endpoint).
		Str("correlation_id", rctx.correlationID).
		Str("category", string(cat)).
		Msg("REST client request failed")
}

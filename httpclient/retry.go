package httpclient

import (
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultMaxRetries bounds retries for network and 5xx failures
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the base delay for exponential backoff
	DefaultRetryDelay = 1 * time.Second

	// DefaultServerRetryDelay applies to 429 responses without a Retry-After header
	DefaultServerRetryDelay = 5 * time.Second

	// DefaultRedirectDelay is how long the unauthorized flow waits before redirecting
	DefaultRedirectDelay = 1500 * time.Millisecond

	// DefaultTrimOnServerLimit is the admission-window size kept after a 429
	DefaultTrimOnServerLimit = 50

	// maxJitter is the upper bound of the random jitter added to network retries
	maxJitter = time.Second
)

// Deduplication keys for notifications that must only be shown once per
// client lifetime even when several requests fail the same way.
const (
	dedupSessionExpired = "session-expired"
	dedupAccessDenied   = "access-denied"
)

const (
	msgRateLimited    = "Too many requests. Please slow down and try again."
	msgSessionExpired = "Your session has expired. Please sign in again."
	msgAccessDenied   = "Access denied. You do not have permission to perform this action."
	msgNotFound       = "The requested resource was not found."
	msgRequestFailed  = "The request could not be completed."
)

// retryCounter is the retry budget shared by every request issued through
// one client. It resets on any success or any terminal failure, so heavy
// concurrent failure traffic exhausts the budget faster than a per-request
// bound would. That coarseness is deliberate; see the package documentation.
type retryCounter struct {
	mu sync.Mutex
	n  int
}

func (rc *retryCounter) value() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.n
}

// increment bumps the counter and returns the new value.
func (rc *retryCounter) increment() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.n++
	return rc.n
}

func (rc *retryCounter) reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.n = 0
}

// decision is the retry orchestrator's verdict for one failed attempt.
type decision struct {
	retry bool
	delay time.Duration
	// err is the terminal error propagated to the caller when retry is false.
	err error
}

// decide applies the per-category policy table: whether to re-issue the
// request, with what delay, and which side effects fire (notifications,
// credential clearing, redirect scheduling, window trimming).
func (c *client) decide(cat Category, rctx *requestContext, resp *Response, cause error) decision {
	switch cat {
	case CategoryRateLimitLocal:
		c.retries.reset()
		c.notifier.NotifyError(msgRateLimited)
		return decision{err: cause}

	case CategoryUnauthorized:
		c.retries.reset()
		c.handleUnauthorized()
		return decision{err: NewHTTPError("authentication required", resp.StatusCode, resp.Body)}

	case CategoryForbidden:
		c.retries.reset()
		c.notifyOnce(dedupAccessDenied, msgAccessDenied)
		return decision{err: NewHTTPError("access forbidden", resp.StatusCode, resp.Body)}

	case CategoryNotFound:
		c.retries.reset()
		err := &httpError{message: "resource not found", statusCode: resp.StatusCode, body: resp.Body}
		if c.isAdminEndpoint(rctx.endpoint) {
			// Administrative endpoints ship local fallback data; the
			// caller renders that instead of an error notification.
			err.fallbackEligible = true
		} else {
			c.notifier.NotifyError(msgNotFound)
		}
		return decision{err: err}

	case CategoryRateLimitServer:
		// Server backpressure is respected unconditionally: never bounded
		// by the retry budget and never counted against it.
		delay := c.serverRetryDelay(resp)
		c.gate.Trim(c.config.TrimOnServerLimit)
		c.notifier.NotifyInfo(fmt.Sprintf("Server is busy. Retrying in %s.", delay))
		return decision{retry: true, delay: delay}

	case CategoryNetworkError, CategoryServerError:
		return c.decideBackoff(cat, resp, cause)

	case CategoryClientError:
		c.retries.reset()
		c.surfaceClientError(resp)
		return decision{err: NewHTTPError("request rejected", resp.StatusCode, resp.Body)}

	default:
		c.retries.reset()
		return decision{err: cause}
	}
}

// decideBackoff handles the bounded retry categories. The shared counter
// caps total retries; delay grows as retryDelay * 2^(n-1), with random
// jitter in [0, 1s) added for network failures only.
func (c *client) decideBackoff(cat Category, resp *Response, cause error) decision {
	if c.retries.value() >= c.config.MaxRetries {
		c.retries.reset()
		if cat == CategoryServerError {
			c.notifier.NotifyError(msgRequestFailed)
			return decision{err: NewHTTPError("server error", resp.StatusCode, resp.Body)}
		}
		c.notifier.NotifyError("Connection problem. Please check your network and try again.")
		if cause == nil {
			cause = NewNetworkError("request failed", nil)
		}
		return decision{err: cause}
	}

	attempt := c.retries.increment()
	delay := c.config.RetryDelay * (1 << (attempt - 1))
	if cat == CategoryNetworkError {
		delay += randomJitter(maxJitter)
	}
	c.notifier.NotifyInfo(fmt.Sprintf("Connection problem. Retrying (attempt %d of %d).", attempt, c.config.MaxRetries))
	return decision{retry: true, delay: delay}
}

// serverRetryDelay honors the server's Retry-After header (integer
// seconds), falling back to the configured default.
func (c *client) serverRetryDelay(resp *Response) time.Duration {
	if resp != nil {
		if v := resp.Headers.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs >= 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return c.config.ServerRetryDelay
}

// handleUnauthorized clears the persisted session and schedules a redirect
// to the auth entry point, unless the user is already inside the auth flow.
func (c *client) handleUnauthorized() {
	c.creds.Remove(KeyAuthToken)
	c.creds.Remove(KeyUserData)
	c.notifyOnce(dedupSessionExpired, msgSessionExpired)

	if strings.Contains(c.nav.CurrentPath(), c.config.AuthPathSegment) {
		return
	}
	c.redirectTimer(c.config.RedirectDelay, func() {
		c.nav.RedirectTo(c.config.LoginPath)
	})
}

// surfaceClientError shows the server-provided message for a 4xx response,
// unless it duplicates a session-expired or access-denied message the user
// has already seen.
func (c *client) surfaceClientError(resp *Response) {
	msg := serverMessage(resp.Body)
	if msg == "" {
		msg = msgRequestFailed
	}
	if key := dedupKey(msg); key != "" {
		c.notifyOnce(key, msg)
		return
	}
	c.notifier.NotifyError(msg)
}

// notifyOnce shows a deduplicated message at most once per client lifetime.
func (c *client) notifyOnce(key, msg string) {
	c.shownMu.Lock()
	_, seen := c.shown[key]
	if !seen {
		c.shown[key] = struct{}{}
	}
	c.shownMu.Unlock()

	if !seen {
		c.notifier.NotifyError(msg)
	}
}

func (c *client) isAdminEndpoint(endpoint string) bool {
	return c.config.AdminPathPrefix != "" && strings.HasPrefix(endpoint, c.config.AdminPathPrefix)
}

// serverMessage extracts a human-readable message from a JSON error body.
// Both {"message": ...} and {"error": {"message": ...}} shapes are accepted.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error.Message
}

// dedupKey maps known duplicate-suppressed messages to their key.
func dedupKey(msg string) string {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "session expired"), strings.Contains(m, "session has expired"):
		return dedupSessionExpired
	case strings.Contains(m, "access denied"):
		return dedupAccessDenied
	}
	return ""
}

// randomJitter returns a random duration in [0, limit).
func randomJitter(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	n, err := crand.Int(crand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		// On RNG failure skip the jitter rather than the retry.
		return 0
	}
	return time.Duration(n.Int64())
}

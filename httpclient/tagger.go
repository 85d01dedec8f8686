package httpclient

import (
	"bytes"
	"context"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/draftline/httpkit/trace"
)

// requestContext carries per-call metadata through the pipeline. It is
// owned exclusively by the in-flight call and discarded when the call
// resolves or exhausts its retries.
type requestContext struct {
	start         time.Time
	endpoint      string
	correlationID string
	// retry marks a re-issued request. Re-issues skip the admission gate
	// and acquire a fresh correlation ID with the same credential.
	retry bool
}

// tag runs the admission check and builds a tagged *http.Request: default
// and caller headers, bearer credential, and a per-attempt correlation ID.
// Admission rejection fails fast with a terminal error; no network call is
// made.
func (c *client) tag(ctx context.Context, method string, req *Request, rctx *requestContext) (*nethttp.Request, error) {
	if !rctx.retry && !c.gate.Admit(rctx.endpoint) {
		return nil, NewAdmissionError(rctx.endpoint)
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := nethttp.NewRequestWithContext(ctx, method, c.resolveURL(req.Path), body)
	if err != nil {
		return nil, NewNetworkError("failed to create HTTP request", err)
	}

	c.applyHeaders(httpReq, req)
	c.applyAuth(httpReq)

	// A fresh correlation ID per attempt; the first attempt honors an ID
	// already present on the context so callers can stitch traces together.
	if rctx.retry {
		rctx.correlationID = c.config.NewCorrelationID()
	} else {
		rctx.correlationID = trace.EnsureCorrelationID(ctx)
	}
	httpReq.Header.Set(HeaderXRequestID, rctx.correlationID)

	return httpReq, nil
}

// resolveURL joins a relative path with the configured base URL. Absolute
// URLs pass through untouched.
func (c *client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	base := strings.TrimSuffix(c.config.BaseURL, "/")
	if base == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// applyHeaders applies default headers, then request-specific headers.
func (c *client) applyHeaders(httpReq *nethttp.Request, req *Request) {
	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if httpReq.Header.Get("Content-Type") == "" && req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
}

// applyAuth attaches the persisted credential as a bearer header. Absent
// credentials leave the request untouched; the server decides whether the
// endpoint requires auth.
func (c *client) applyAuth(httpReq *nethttp.Request) {
	if token, ok := c.creds.Get(KeyAuthToken); ok && token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
}

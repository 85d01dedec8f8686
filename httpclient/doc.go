// Package httpclient provides a resilient HTTP client for talking to the
// CMS admin API: client-side admission control, credential tagging,
// response classification, and retry/backoff orchestration.
//
// Pipeline
//
//	Every call runs Admission Gate -> Request Tagger -> transport ->
//	Response Classifier -> Retry Orchestrator. The orchestrator may loop
//	back through tagging and the transport; retries re-acquire a fresh
//	correlation ID but skip the admission gate.
//
// Retries
//   - Network failures and HTTP 5xx retry up to the configured maximum,
//     with exponential backoff (delay = retryDelay * 2^(n-1)); network
//     failures add random jitter in [0, 1s).
//   - HTTP 429 retries unconditionally, honoring the Retry-After header,
//     and is never bounded by the retry maximum. This is a deliberate
//     carve-out so server backpressure is always respected.
//   - The retry counter is shared across all concurrent requests. Heavy
//     concurrent failure traffic exhausts the budget faster; this coarse
//     global bound is a documented design property of the client.
//   - 4xx responses are not retried.
//
// Terminal failures notify the user exactly once through the configured
// Notifier, except where suppression applies (administrative 404s with
// fallback data, duplicate session-expired/access-denied messages).
package httpclient

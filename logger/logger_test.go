package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewDefaultsToInfoOnBadLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("not-a-level", false, &buf)

	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Info().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestEventFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("debug", false, &buf)

	log.Info().
		Str("method", "GET").
		Int("status", 200).
		Int64("call_count", 3).
		Dur("elapsed", 150*time.Millisecond).
		Err(errors.New("boom")).
		Msg("request done")

	entry := logLine(t, &buf)
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(3), entry["call_count"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "request done", entry["message"])
}

func TestSensitiveStringFieldIsMasked(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", false, &buf)

	log.Info().Str("authorization", "Bearer abc123").Msg("tagged")

	entry := logLine(t, &buf)
	assert.Equal(t, DefaultMaskValue, entry["authorization"])
}

func TestHeaderMapIsMasked(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", false, &buf)

	log.Info().Interface("headers", map[string]string{
		"Authorization": "Bearer abc123",
		"X-Request-ID":  "req-1",
	}).Msg("outbound")

	entry := logLine(t, &buf)
	headers, ok := entry["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DefaultMaskValue, headers["Authorization"])
	assert.Equal(t, "req-1", headers["X-Request-ID"])
}

func TestWithFieldsMasksSensitiveEntries(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOutput("info", false, &buf)

	log.WithFields(map[string]any{
		"component": "httpclient",
		"token":     "secret-token",
	}).Info().Msg("started")

	entry := logLine(t, &buf)
	assert.Equal(t, "httpclient", entry["component"])
	assert.Equal(t, DefaultMaskValue, entry["token"])
}

func TestNewDisabledDiscardsEverything(t *testing.T) {
	log := NewDisabled()
	// Must not panic and must not write anywhere observable.
	log.Error().Str("k", "v").Msg("dropped")
	log.Warn().Msgf("dropped %d", 1)
}

func TestFilterDottedAndHyphenatedKeys(t *testing.T) {
	f := NewSensitiveDataFilter(nil)

	assert.Equal(t, DefaultMaskValue, f.FilterString("request.headers.authorization", "x"))
	assert.Equal(t, DefaultMaskValue, f.FilterString("Auth-Token", "x"))
	assert.Equal(t, "ok", f.FilterString("endpoint", "ok"))
}

func TestCustomFilterConfig(t *testing.T) {
	f := NewSensitiveDataFilter(&FilterConfig{
		SensitiveFields: []string{"session_id"},
		MaskValue:       "[redacted]",
	})

	assert.Equal(t, "[redacted]", f.FilterString("session_id", "abc"))
	// Defaults are replaced, not merged.
	assert.Equal(t, "Bearer x", f.FilterString("authorization", "Bearer x"))
}

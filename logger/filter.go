// Package logger provides filtering of credential-bearing data in log output.
package logger

import "strings"

// DefaultMaskValue replaces sensitive values in log output.
const DefaultMaskValue = "***"

// FilterConfig defines which field names are masked in logs.
type FilterConfig struct {
	// SensitiveFields contains field names that should be masked in logs.
	// Matching is case-insensitive on the last dot-separated segment.
	SensitiveFields []string
	// MaskValue is the value used to replace sensitive data (default: "***")
	MaskValue string
}

// DefaultFilterConfig returns the default configuration. The client logs
// tagged requests that carry bearer tokens, so the credential headers and
// token fields must never reach the log stream in clear text.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "passwd", "pwd",
			"secret", "api_key", "apikey",
			"token", "auth_token", "access_token", "refresh_token",
			"auth", "authorization", "bearer",
			"credential", "credentials",
			"user_data",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks credential-bearing fields before they are
// written by the log event adapter.
type SensitiveDataFilter struct {
	config    *FilterConfig
	sensitive map[string]struct{}
}

// NewSensitiveDataFilter creates a filter with the given configuration.
// A nil config selects DefaultFilterConfig.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	sensitive := make(map[string]struct{}, len(config.SensitiveFields))
	for _, f := range config.SensitiveFields {
		sensitive[strings.ToLower(f)] = struct{}{}
	}
	return &SensitiveDataFilter{config: config, sensitive: sensitive}
}

// FilterString masks the value when the key names a sensitive field.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.isSensitiveField(key) {
		return f.config.MaskValue
	}
	return value
}

// FilterValue masks any value when the key names a sensitive field.
// Maps of string to any are filtered one level deep, which covers the
// header maps the HTTP client logs.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	if f.isSensitiveField(key) {
		return f.config.MaskValue
	}
	if m, ok := value.(map[string]string); ok {
		return f.filterStringMap(m)
	}
	if m, ok := value.(map[string]any); ok {
		return f.FilterFields(m)
	}
	return value
}

// FilterFields returns a copy of fields with sensitive entries masked.
func (f *SensitiveDataFilter) FilterFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if f.isSensitiveField(k) {
			out[k] = f.config.MaskValue
			continue
		}
		out[k] = f.FilterValue(k, v)
	}
	return out
}

func (f *SensitiveDataFilter) filterStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		if f.isSensitiveField(k) {
			out[k] = f.config.MaskValue
			continue
		}
		out[k] = v
	}
	return out
}

func (f *SensitiveDataFilter) isSensitiveField(key string) bool {
	k := strings.ToLower(key)
	// Keys may arrive dotted (e.g. "request.headers.authorization");
	// match on the final segment.
	if i := strings.LastIndex(k, "."); i >= 0 {
		k = k[i+1:]
	}
	k = strings.ReplaceAll(k, "-", "_")
	_, ok := f.sensitive[k]
	return ok
}

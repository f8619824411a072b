// Package redaction scrubs credential-shaped strings and fields out of
// arbitrary data before it reaches a log line or an external response body.
// It complements pkg/credentials' opaque Secret type, which only protects
// values that flow through that type explicitly; this catches secrets that
// leak into free-form strings or maps (error messages, banners, headers).
package redaction

import (
	"regexp"
	"strings"
)

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|apikey)["']?\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
	regexp.MustCompile(`(?i)(secret|token|auth)["']?\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
	regexp.MustCompile(`(?i)Bearer\s+([a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`(?i)password["']?\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
	regexp.MustCompile(`(?i)(private[_-]?key|privkey)["']?\s*[:=]\s*["']?([^"'\s,}]+)["']?`),
}

// Config controls which field names are treated as secret outright and what
// replaces a matched value.
type Config struct {
	RedactionText string
	BlockedFields []string
}

func DefaultConfig() Config {
	return Config{
		RedactionText: "***REDACTED***",
		BlockedFields: []string{"password", "secret", "token", "apikey", "private_key", "credential"},
	}
}

// Redactor scrubs strings and maps in place against Config's rules.
type Redactor struct {
	cfg Config
}

func New(cfg Config) *Redactor {
	if cfg.RedactionText == "" {
		cfg.RedactionText = "***REDACTED***"
	}
	return &Redactor{cfg: cfg}
}

// String replaces any credential-shaped substring of s with the redaction
// text, preserving the matched key name.
func (r *Redactor) String(s string) string {
	result := s
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, "${1}: "+r.cfg.RedactionText)
	}
	return result
}

// Map returns a copy of m with blocked fields replaced outright and string
// values scrubbed via String.
func (r *Redactor) Map(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		switch {
		case r.isBlockedField(k):
			out[k] = r.cfg.RedactionText
		case v == nil:
			out[k] = v
		default:
			out[k] = r.value(v)
		}
	}
	return out
}

func (r *Redactor) value(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		return r.String(val)
	case map[string]interface{}:
		return r.Map(val)
	case []interface{}:
		return r.slice(val)
	default:
		return val
	}
}

func (r *Redactor) slice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = r.value(v)
	}
	return out
}

func (r *Redactor) isBlockedField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, blocked := range r.cfg.BlockedFields {
		if strings.Contains(lower, blocked) {
			return true
		}
	}
	return false
}

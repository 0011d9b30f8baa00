// Package service provides audit metadata sanitization and event signing.
package service

import (
	"strings"
)

// RedactedValue replaces any metadata value considered secret.
const RedactedValue = "[REDACTED]"

// defaultSensitiveNames are substrings that mark a metadata key as secret.
var defaultSensitiveNames = []string{
	"password",
	"passwd",
	"passphrase",
	"secret",
	"token",
	"pin",
	"key",
	"private",
	"credential",
	"seed",
	"mnemonic",
	"signature",
	"plaintext",
}

// Redactor strips secret material from caller-supplied metadata.
type Redactor struct {
	sensitive []string
}

// NewRedactor creates a redactor using the built-in sensitive-name list plus extra.
func NewRedactor(extra ...string) *Redactor {
	sensitive := make([]string, 0, len(defaultSensitiveNames)+len(extra))
	sensitive = append(sensitive, defaultSensitiveNames...)
	for _, name := range extra {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			sensitive = append(sensitive, name)
		}
	}
	return &Redactor{sensitive: sensitive}
}

// IsSensitive reports whether a metadata key looks like it names secret material.
func (r *Redactor) IsSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range r.sensitive {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Sanitize returns a deep copy of metadata with sensitive entries redacted.
// Raw byte values are always redacted. Nested maps and slices are walked.
func (r *Redactor) Sanitize(metadata map[string]any) map[string]any {
	if metadata == nil {
		return nil
	}

	out := make(map[string]any, len(metadata))
	for name, value := range metadata {
		if r.IsSensitive(name) {
			out[name] = RedactedValue
			continue
		}
		out[name] = r.sanitizeValue(value)
	}
	return out
}

func (r *Redactor) sanitizeValue(value any) any {
	switch v := value.(type) {
	case []byte:
		return RedactedValue
	case map[string]any:
		return r.Sanitize(v)
	case map[string]string:
		m := make(map[string]any, len(v))
		for name, s := range v {
			m[name] = s
		}
		return r.Sanitize(m)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = r.sanitizeValue(item)
		}
		return items
	default:
		return v
	}
}

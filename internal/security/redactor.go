// Package security provides secret redaction and audit logging for the
// agent engine. Tool parameters and data-store credentials pass through
// model-visible text and log output, so every sink (slog, audit trail,
// gateway responses) filters through a Redactor.
package security

import (
	"regexp"
	"strings"
	"sync"
)

// RedactPlaceholder replaces secret values wherever they are found.
const RedactPlaceholder = "***REDACTED***"

// secretKeyPattern matches parameter or config keys that carry secrets.
var secretKeyPattern = regexp.MustCompile(`(?i)(password|passwd|secret|token|credential|api_key)`)

// Redactor removes secret values from strings and parameter maps.
// Literal values (e.g. a SQL password supplied in a connect call) are
// registered at runtime; pattern matching covers common token formats.
// Safe for concurrent use.
type Redactor struct {
	mu       sync.RWMutex
	patterns []*regexp.Regexp
	literals []string
}

// NewRedactor returns a Redactor loaded with the default token patterns.
func NewRedactor() *Redactor {
	return &Redactor{patterns: defaultPatterns()}
}

// AddLiteral registers a secret value to be replaced on sight.
// Empty and very short strings are ignored; replacing one- or two-character
// substrings would mangle unrelated text.
func (r *Redactor) AddLiteral(secret string) {
	if len(secret) < 3 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.literals = append(r.literals, secret)
}

// Redact replaces all known secret patterns and registered literals in s.
func (r *Redactor) Redact(s string) string {
	if s == "" {
		return s
	}

	r.mu.RLock()
	patterns := r.patterns
	literals := r.literals
	r.mu.RUnlock()

	for _, p := range patterns {
		s = p.ReplaceAllString(s, RedactPlaceholder)
	}
	for _, lit := range literals {
		if strings.Contains(s, lit) {
			s = strings.ReplaceAll(s, lit, RedactPlaceholder)
		}
	}
	return s
}

// RedactParams returns a copy of a tool parameter map with values under
// secret-named keys replaced. Used before parameters are surfaced in
// approval notifications, audit events, or gateway responses.
func (r *Redactor) RedactParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		if secretKeyPattern.MatchString(k) {
			if s, ok := v.(string); ok && s != "" {
				out[k] = RedactPlaceholder
				continue
			}
		}
		if s, ok := v.(string); ok {
			out[k] = r.Redact(s)
			continue
		}
		out[k] = v
	}
	return out
}

// defaultPatterns compiles patterns for token formats that may appear in
// model output or tool results.
func defaultPatterns() []*regexp.Regexp {
	return []*regexp.Regexp{
		// Bearer tokens in headers echoed by shell output.
		regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]{16,}=*`),
		// OpenAI-style API keys.
		regexp.MustCompile(`sk-[a-zA-Z0-9\-]{20,}`),
		// SQL Server connection-string passwords.
		regexp.MustCompile(`(?i)password=[^;\s]+`),
		// GitHub tokens.
		regexp.MustCompile(`(ghp_|gho_|ghs_|github_pat_)[a-zA-Z0-9_]{20,}`),
	}
}

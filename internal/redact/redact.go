// Package redact scrubs connection strings, tokens, SQL and file paths out of
// error text before it is logged or shown to an API client.
package redact

import "regexp"

// Placeholder replaces each redacted fragment.
const Placeholder = "[REDACTED]"

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules run in order; URLs and tokens go before the looser path and SQL rules
// so a DSN is replaced as a whole.
var rules = []rule{
	{regexp.MustCompile(`(?i)\b(?:postgres(?:ql)?://|file:)\S+`), "[REDACTED_DSN]"},
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},
	{regexp.MustCompile(`(?i)\b(password|secret|jwt_secret|token)(\s*[=:]\s*)\S+`), "${1}${2}" + Placeholder},
	{regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE)\b.*?\b(FROM|INTO|SET)\b\s+\w+`), "[REDACTED_SQL]"},
	{regexp.MustCompile(`(?:/[\w.-]+){2,}`), "[REDACTED_PATH]"},
}

// String returns s with every sensitive fragment replaced.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.replacement)
	}
	return s
}

// Error returns the redacted text of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

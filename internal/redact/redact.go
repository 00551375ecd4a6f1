// Package redact scrubs sensitive fragments from strings before they are
// logged. Error messages routinely embed connection strings, tokens, or
// media URLs; passing them through Error keeps those details out of log
// aggregation.
package redact

import "regexp"

// Placeholders substituted for matched fragments.
const (
	CredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	KeyPlaceholder        = "[REDACTED_KEY]"
	TokenPlaceholder      = "[REDACTED_TOKEN]"
	EmailPlaceholder      = "[REDACTED_EMAIL]"
	PathPlaceholder       = "[REDACTED_PATH]"
	URLPlaceholder        = "[REDACTED_URL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules are applied in order; earlier rules take precedence when fragments
// overlap (a connection string contains a host, so it must match first).
var rules = []rule{
	// Connection strings with inline credentials (postgres://user:pw@host).
	{regexp.MustCompile(`(?i)\b[a-z][a-z0-9+]*://[^@\s/]+@\S+`), CredentialPlaceholder},

	// password=..., passwd: "...", pwd='...'
	{regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]+`), CredentialPlaceholder},

	// api_key=..., secret: ..., token=...
	{regexp.MustCompile(`(?i)(api[_-]?key|secret|access[_-]?key)\s*[=:]\s*['"]?[A-Za-z0-9_\-.~+/]{8,}`), KeyPlaceholder},

	// JWTs: three base64url segments, the first two starting with eyJ.
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), TokenPlaceholder},

	// Email addresses.
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), EmailPlaceholder},

	// Media and signed URLs.
	{regexp.MustCompile(`\bhttps?://\S+`), URLPlaceholder},

	// Filesystem paths with at least two segments.
	{regexp.MustCompile(`(/[\w.-]+){2,}`), PathPlaceholder},
}

// String returns s with every sensitive fragment replaced by its placeholder.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error returns the redacted message of err, or "" for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// Package redact scrubs credentials from strings before they are logged.
// Errors from the HTTP and database clients routinely embed request URLs and
// connection strings, and the Telegram Bot API carries the bot token in the
// URL path, so every error that reaches a log line goes through Error.
package redact

import "regexp"

// Placeholders substituted for redacted fragments.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_BOT_TOKEN]"
	RedactedJWTPlaceholder        = "[REDACTED_JWT]"
)

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rules are applied in order; earlier rules see the unmodified input.
var rules = []rule{
	// Connection strings: keep the scheme, drop user:password@.
	{
		regexp.MustCompile(`(?i)\b(postgres|postgresql|redis|rediss|sqlite|file)://[^@/\s]+@`),
		"$1://" + RedactedCredentialPlaceholder + "@",
	},
	// Telegram bot tokens as they appear in Bot API paths.
	{
		regexp.MustCompile(`/bot\d{5,}:[A-Za-z0-9_-]{20,}`),
		"/bot" + RedactedTokenPlaceholder,
	},
	{
		regexp.MustCompile(`\b\d{5,}:[A-Za-z0-9_-]{30,}\b`),
		RedactedTokenPlaceholder,
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		RedactedJWTPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]+['"]?)[^'"&\s]{3,}`),
		"$1$2" + RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|token|secret|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`),
		"$1$2" + RedactedKeyPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

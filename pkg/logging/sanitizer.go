package logging

import (
	"fmt"
	"strings"
)

// maxMessageLength is the cutoff beyond which messages are truncated
// to keep a single hostile or buggy caller from flooding the sinks.
const maxMessageLength = 10000

// truncationMarker is appended to truncated messages.
const truncationMarker = "... (truncated)"

// sensitiveKeys is the fixed set of case-insensitive substrings that
// mark a context key as carrying a secret. Matching is by substring,
// so "user_password" and "PasswordHash" are both redacted.
var sensitiveKeys = []string{
	"password", "passwd", "pwd", "secret", "token", "api_key",
	"apikey", "auth", "credential", "private_key", "access_token",
	"session_id", "ssn", "credit_card", "cvv",
}

// redactedValue replaces values of sensitive keys.
const redactedValue = "***REDACTED***"

// SanitizeMessage strips newline, carriage-return, and tab characters
// from a message, replacing each with a single space, so a forged
// multi-line payload cannot inject extra log entries. Messages longer
// than 10,000 characters are truncated with a literal marker. The
// operation is total: it never fails.
func SanitizeMessage(message string) string {
	replacer := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")
	message = replacer.Replace(message)

	if runes := []rune(message); len(runes) > maxMessageLength {
		message = string(runes[:maxMessageLength]) + truncationMarker
	}

	return message
}

// SanitizeContext returns a copy of context with the values of
// sensitive keys replaced by "***REDACTED***". Nested map values are
// sanitized recursively. A nil context yields an empty map. The
// operation is total: malformed entries pass through rather than
// failing the logging call.
func SanitizeContext(context map[string]any) map[string]any {
	sanitized := make(map[string]any, len(context))
	for key, value := range context {
		if isSensitiveKey(key) {
			sanitized[key] = redactedValue
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			sanitized[key] = SanitizeContext(nested)
			continue
		}
		sanitized[key] = value
	}
	return sanitized
}

// isSensitiveKey reports whether the key case-insensitively contains
// any member of the sensitive key set.
func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

// contextFromKeyvals converts a keyvals slice ("key", value, ...) into
// a context map. Non-string keys are coerced to their text
// representation and a trailing key without a value is dropped, so a
// malformed call site degrades instead of failing.
func contextFromKeyvals(keyvals []any) map[string]any {
	if len(keyvals) == 0 {
		return nil
	}
	context := make(map[string]any, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = fmt.Sprint(keyvals[i])
		}
		context[key] = keyvals[i+1]
	}
	return context
}

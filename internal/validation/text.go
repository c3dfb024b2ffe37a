package validation

import (
	"strings"
	"unicode/utf8"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
)

// Truncate cuts text longer than limit runes to exactly limit runes, the last
// four being the truncation suffix. Text already within the limit is returned
// unchanged, which makes the operation idempotent.
func Truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	suffix := []rune(constants.TruncationSuffix)
	if limit <= len(suffix) {
		return string([]rune(text)[:limit])
	}

	runes := []rune(text)

	return string(runes[:limit-len(suffix)]) + constants.TruncationSuffix
}

// WithinLength reports whether every value holds at most limit runes.
func WithinLength(values map[string]string, limit int) bool {
	if limit <= 0 {
		return true
	}

	for _, value := range values {
		if utf8.RuneCountInString(value) > limit {
			return false
		}
	}

	return true
}

// CollapseSpaces replaces every run of whitespace, newlines included, with a
// single space and trims the result.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

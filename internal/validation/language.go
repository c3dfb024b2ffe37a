package validation

import (
	"strings"

	"golang.org/x/text/language"
)

// IsLanguage reports whether code is a lowercase ISO 639-1 two-letter code.
func IsLanguage(code string) bool {
	if len(code) != 2 || strings.ToLower(code) != code {
		return false
	}

	base, err := language.ParseBase(code)
	if err != nil {
		return false
	}

	return base.String() == code
}

// InvalidLanguages returns the codes in codes that are not valid, preserving order.
func InvalidLanguages(codes []string) []string {
	var invalid []string

	for _, code := range codes {
		if !IsLanguage(code) {
			invalid = append(invalid, code)
		}
	}

	return invalid
}

package validation

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// Phone parses number in the context of region (ISO 3166-1 alpha-2) and
// returns it in international format. ok is false when the number is not
// valid for any region.
func Phone(number, region string) (formatted string, ok bool) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", false
	}

	parsed, err := phonenumbers.Parse(number, strings.ToUpper(region))
	if err != nil {
		return "", false
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", false
	}

	return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL), true
}

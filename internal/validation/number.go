package validation

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ToInt converts value to an int. Strings are read as base 10, so "010" is
// ten and "08" is eight.
func ToInt(value interface{}) (int, error) {
	switch typed := value.(type) {
	case string:
		return strconv.Atoi(strings.TrimSpace(typed))
	case []byte:
		return strconv.Atoi(strings.TrimSpace(string(typed)))
	}

	return cast.ToIntE(value)
}

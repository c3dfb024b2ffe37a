package openagenda

import (
	"net/url"

	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

// Rule is a standalone predicate evaluated against the fields of an entity
// given as a plain map.
type Rule func(fields map[string]interface{}) bool

// CheckTimings reports whether value is a non-empty list of timings, each
// beginning strictly before it ends.
func CheckTimings(value interface{}) bool {
	timings, err := ParseTimings(value)
	if err != nil || len(timings) == 0 {
		return false
	}

	for _, timing := range timings {
		if !timing.Valid() {
			return false
		}
	}

	return true
}

// CheckAge reports whether value is a consistent age range. An empty range
// is valid.
func CheckAge(value interface{}) bool {
	age, err := ParseAge(value)
	if err != nil {
		return false
	}

	return age.Valid()
}

// CheckAccessibility reports whether value only uses known flags.
func CheckAccessibility(value interface{}) bool {
	_, err := ParseAccessibility(value)

	return err == nil
}

func attendanceMode(fields map[string]interface{}) AttendanceMode {
	raw, ok := fields["attendanceMode"]
	if !ok || raw == nil {
		return AttendanceOffline
	}

	mode, err := ParseAttendanceMode(raw)
	if err != nil {
		return AttendanceOffline
	}

	return mode
}

// LocationRequired reports whether an event needs a location: every event
// except online-only ones.
func LocationRequired(fields map[string]interface{}) bool {
	return attendanceMode(fields) != AttendanceOnline
}

// OnlineAccessLinkRequired reports whether an event needs an access link:
// online and mixed events.
func OnlineAccessLinkRequired(fields map[string]interface{}) bool {
	mode := attendanceMode(fields)

	return mode == AttendanceOnline || mode == AttendanceMixed
}

// CheckLocation passes when no location is required or one is given through
// locationUid or an embedded location.
func CheckLocation(fields map[string]interface{}) bool {
	if !LocationRequired(fields) {
		return true
	}

	if uid, err := validation.ToInt(fields["locationUid"]); err == nil && uid > 0 {
		return true
	}

	switch location := fields["location"].(type) {
	case *Location:
		return location != nil
	case map[string]interface{}:
		return len(location) > 0
	}

	return false
}

// CheckOnlineAccessLink passes when no link is required or an absolute
// http(s) link is given.
func CheckOnlineAccessLink(fields map[string]interface{}) bool {
	if !OnlineAccessLinkRequired(fields) {
		return true
	}

	link, _ := fields["onlineAccessLink"].(string)
	if link == "" {
		return false
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return false
	}

	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

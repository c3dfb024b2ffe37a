package openagenda

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

// Accessibility flags: hearing, intellectual, mental, physical and visual
// impairments.
type Accessibility struct {
	HI bool `json:"hi"`
	II bool `json:"ii"`
	MI bool `json:"mi"`
	PI bool `json:"pi"`
	VI bool `json:"vi"`
}

// AccessibilityKeys are the only flags the API knows.
var AccessibilityKeys = []string{"hi", "ii", "mi", "pi", "vi"}

// ToMap renders the wire form.
func (a Accessibility) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"hi": a.HI,
		"ii": a.II,
		"mi": a.MI,
		"pi": a.PI,
		"vi": a.VI,
	}
}

func (a *Accessibility) flag(key string) (*bool, bool) {
	switch key {
	case "hi":
		return &a.HI, true
	case "ii":
		return &a.II, true
	case "mi":
		return &a.MI, true
	case "pi":
		return &a.PI, true
	case "vi":
		return &a.VI, true
	default:
		return nil, false
	}
}

// ParseAccessibility converts an Accessibility or a flag map. Unknown keys
// are rejected and listed in the error.
func ParseAccessibility(value interface{}) (Accessibility, error) {
	var raw map[string]interface{}

	switch typed := value.(type) {
	case nil:
		return Accessibility{}, nil
	case Accessibility:
		return typed, nil
	case map[string]bool:
		raw = make(map[string]interface{}, len(typed))
		for key, flag := range typed {
			raw[key] = flag
		}
	case map[string]interface{}:
		raw = typed
	default:
		return Accessibility{}, fmt.Errorf("unsupported accessibility %T: %w", value, ErrInvalidInput)
	}

	result := Accessibility{}

	var unknown []string

	for key, flag := range raw {
		target, ok := result.flag(key)
		if !ok {
			unknown = append(unknown, key)

			continue
		}

		converted, err := cast.ToBoolE(flag)
		if err != nil {
			return Accessibility{}, fmt.Errorf("parsing accessibility %s: %w", key, err)
		}

		*target = converted
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)

		return Accessibility{}, fmt.Errorf("unknown accessibility keys %s: %w", strings.Join(unknown, ", "), ErrInvalidInput)
	}

	return result, nil
}

func accessibilitySetter(e *Entity, value interface{}) (interface{}, error) {
	accessibility, err := ParseAccessibility(value)
	if err != nil {
		return nil, &DomainError{Entity: e.schema.Name(), Field: "accessibility", Rule: constants.RuleInList, Message: err.Error(), Err: err}
	}

	return accessibility, nil
}

// AttendanceMode tells whether an event happens on site, online or both.
type AttendanceMode int

// Attendance modes.
const (
	AttendanceOffline AttendanceMode = 1
	AttendanceOnline  AttendanceMode = 2
	AttendanceMixed   AttendanceMode = 3
)

var attendanceModeNames = map[string]AttendanceMode{
	"offline": AttendanceOffline,
	"online":  AttendanceOnline,
	"mixed":   AttendanceMixed,
}

// String returns the lowercase mode name.
func (m AttendanceMode) String() string {
	for name, mode := range attendanceModeNames {
		if mode == m {
			return name
		}
	}

	return strconv.Itoa(int(m))
}

// ParseAttendanceMode accepts a mode, its number or its name.
func ParseAttendanceMode(value interface{}) (AttendanceMode, error) {
	mode, err := parseEnum(value, attendanceModeNames, 1, 3)
	if err != nil {
		return 0, fmt.Errorf("attendance mode: %w", err)
	}

	return AttendanceMode(mode), nil
}

// EventState is the moderation state of an event.
type EventState int

// Moderation states.
const (
	StateRefused    EventState = -1
	StateToModerate EventState = 0
	StateReady      EventState = 1
	StatePublished  EventState = 2
)

var eventStateNames = map[string]int{
	"refused":        int(StateRefused),
	"tomoderate":     int(StateToModerate),
	"ready":          int(StateReady),
	"readytopublish": int(StateReady),
	"published":      int(StatePublished),
}

// String returns the state name.
func (s EventState) String() string {
	switch s {
	case StateRefused:
		return "refused"
	case StateToModerate:
		return "toModerate"
	case StateReady:
		return "readyToPublish"
	case StatePublished:
		return "published"
	default:
		return strconv.Itoa(int(s))
	}
}

// ParseEventState accepts a state, its number or its name.
func ParseEventState(value interface{}) (EventState, error) {
	state, err := parseEnum(value, eventStateNames, -1, 2)
	if err != nil {
		return 0, fmt.Errorf("event state: %w", err)
	}

	return EventState(state), nil
}

// EventStatus is the scheduling status of an event.
type EventStatus int

// Scheduling statuses.
const (
	StatusScheduled   EventStatus = 1
	StatusRescheduled EventStatus = 2
	StatusMovedOnline EventStatus = 3
	StatusPostponed   EventStatus = 4
	StatusFull        EventStatus = 5
	StatusCancelled   EventStatus = 6
)

var eventStatusNames = map[string]int{
	"scheduled":   int(StatusScheduled),
	"rescheduled": int(StatusRescheduled),
	"movedonline": int(StatusMovedOnline),
	"postponed":   int(StatusPostponed),
	"full":        int(StatusFull),
	"cancelled":   int(StatusCancelled),
}

// ParseEventStatus accepts a status, its number or its name.
func ParseEventStatus(value interface{}) (EventStatus, error) {
	status, err := parseEnum(value, eventStatusNames, 1, 6)
	if err != nil {
		return 0, fmt.Errorf("event status: %w", err)
	}

	return EventStatus(status), nil
}

func parseEnum[M ~int](value interface{}, names map[string]M, low, high int) (int, error) {
	switch typed := value.(type) {
	case AttendanceMode:
		value = int(typed)
	case EventState:
		value = int(typed)
	case EventStatus:
		value = int(typed)
	case string:
		if known, ok := names[strings.ToLower(strings.ReplaceAll(typed, "_", ""))]; ok {
			return int(known), nil
		}
	}

	number, err := validation.ToInt(value)
	if err != nil {
		return 0, fmt.Errorf("unknown value %v: %w", value, ErrInvalidInput)
	}

	if number < low || number > high {
		return 0, fmt.Errorf("value %d out of range %d..%d: %w", number, low, high, ErrInvalidInput)
	}

	return number, nil
}

func enumSetter[T any](field string, parse func(interface{}) (T, error)) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}

		parsed, err := parse(value)
		if err != nil {
			return nil, &DomainError{Entity: e.schema.Name(), Field: field, Rule: constants.RuleInList, Message: err.Error(), Err: err}
		}

		return parsed, nil
	}
}

func encodeInt(value interface{}) (interface{}, error) {
	reflected := reflect.ValueOf(value)
	if reflected.Kind() == reflect.Int {
		return int(reflected.Int()), nil
	}

	return validation.ToInt(value)
}

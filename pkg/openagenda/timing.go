package openagenda

import (
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

// Timing is one occurrence of an event.
type Timing struct {
	Begin time.Time `json:"begin"`
	End   time.Time `json:"end"`
}

// Valid reports whether Begin is strictly before End.
func (t Timing) Valid() bool {
	return !t.Begin.IsZero() && !t.End.IsZero() && t.Begin.Before(t.End)
}

// ToMap renders the wire form.
func (t Timing) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"begin": t.Begin.Format(time.RFC3339),
		"end":   t.End.Format(time.RFC3339),
	}
}

// ParseTimings converts a list of timings given as Timing values or
// begin/end maps. It does not check ordering.
func ParseTimings(value interface{}) ([]Timing, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case []Timing:
		return typed, nil
	case []map[string]interface{}:
		items := make([]interface{}, len(typed))
		for index, item := range typed {
			items[index] = item
		}

		return ParseTimings(items)
	case []interface{}:
		timings := make([]Timing, 0, len(typed))

		for index, item := range typed {
			timing, err := parseTiming(item)
			if err != nil {
				return nil, fmt.Errorf("timing %d: %w", index, err)
			}

			timings = append(timings, timing)
		}

		return timings, nil
	default:
		return nil, fmt.Errorf("expected a list of timings, got %T: %w", value, ErrInvalidInput)
	}
}

func parseTiming(value interface{}) (Timing, error) {
	switch typed := value.(type) {
	case Timing:
		return typed, nil
	case map[string]interface{}:
		begin, err := cast.ToTimeE(typed["begin"])
		if err != nil {
			return Timing{}, fmt.Errorf("parsing begin: %w", err)
		}

		end, err := cast.ToTimeE(typed["end"])
		if err != nil {
			return Timing{}, fmt.Errorf("parsing end: %w", err)
		}

		return Timing{Begin: begin, End: end}, nil
	case map[string]string:
		return parseTiming(map[string]interface{}{"begin": typed["begin"], "end": typed["end"]})
	default:
		return Timing{}, fmt.Errorf("unsupported timing %T: %w", value, ErrInvalidInput)
	}
}

func timingsSetter(e *Entity, value interface{}) (interface{}, error) {
	timings, err := ParseTimings(value)
	if err != nil {
		return nil, &DomainError{Entity: e.schema.Name(), Field: "timings", Rule: constants.RuleType, Message: err.Error(), Err: err}
	}

	if len(timings) == 0 {
		return nil, newDomainError(e.schema.Name(), "timings", constants.RuleRequired, "at least one timing is required")
	}

	for index, timing := range timings {
		if !timing.Valid() {
			return nil, newDomainError(e.schema.Name(), "timings", constants.RuleCustom,
				fmt.Sprintf("timing %d must begin before it ends", index))
		}
	}

	return timings, nil
}

func encodeTimings(value interface{}) (interface{}, error) {
	timings, err := ParseTimings(value)
	if err != nil {
		return nil, err
	}

	result := make([]interface{}, len(timings))
	for index, timing := range timings {
		result[index] = timing.ToMap()
	}

	return result, nil
}

// Age is the audience age range of an event. Max requires Min.
type Age struct {
	Min *int `json:"min,omitempty"`
	Max *int `json:"max,omitempty"`
}

// NewAge returns an Age with both bounds set.
func NewAge(minAge, maxAge int) Age {
	return Age{Min: &minAge, Max: &maxAge}
}

// Valid reports whether the range is consistent.
func (a Age) Valid() bool {
	if a.Max != nil && a.Min == nil {
		return false
	}

	if a.Min != nil && a.Max != nil && *a.Min > *a.Max {
		return false
	}

	return true
}

// ToMap renders the wire form, omitting unset bounds.
func (a Age) ToMap() map[string]interface{} {
	result := make(map[string]interface{}, 2)

	if a.Min != nil {
		result["min"] = *a.Min
	}

	if a.Max != nil {
		result["max"] = *a.Max
	}

	return result
}

// ParseAge converts an Age or a min/max map.
func ParseAge(value interface{}) (Age, error) {
	switch typed := value.(type) {
	case nil:
		return Age{}, nil
	case Age:
		return typed, nil
	case *Age:
		if typed == nil {
			return Age{}, nil
		}

		return *typed, nil
	case map[string]int:
		converted := make(map[string]interface{}, len(typed))
		for key, bound := range typed {
			converted[key] = bound
		}

		return ParseAge(converted)
	case map[string]interface{}:
		age := Age{}

		for key, target := range map[string]**int{"min": &age.Min, "max": &age.Max} {
			raw, ok := typed[key]
			if !ok || raw == nil {
				continue
			}

			bound, err := validation.ToInt(raw)
			if err != nil {
				return Age{}, fmt.Errorf("parsing age %s: %w", key, err)
			}

			*target = &bound
		}

		return age, nil
	default:
		return Age{}, fmt.Errorf("unsupported age %T: %w", value, ErrInvalidInput)
	}
}

func ageSetter(e *Entity, value interface{}) (interface{}, error) {
	age, err := ParseAge(value)
	if err != nil {
		return nil, &DomainError{Entity: e.schema.Name(), Field: "age", Rule: constants.RuleType, Message: err.Error(), Err: err}
	}

	if age.Max != nil && age.Min == nil {
		return nil, newDomainError(e.schema.Name(), "age", constants.RuleRequired, "min is required when max is set")
	}

	if !age.Valid() {
		return nil, newDomainError(e.schema.Name(), "age", constants.RuleRange, "min must not exceed max")
	}

	return age, nil
}

func encodeMapper(value interface{}) (interface{}, error) {
	if mapper, ok := value.(Mapper); ok {
		return mapper.ToMap(), nil
	}

	return value, nil
}

package openagenda

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

func typeError(e *Entity, field, expected string, value interface{}) error {
	return &DomainError{
		Entity:  e.schema.Name(),
		Field:   field,
		Rule:    constants.RuleType,
		Message: fmt.Sprintf("expected %s, got %T", expected, value),
		Err:     ErrInvalidInput,
	}
}

func intSetter(field string) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}

		converted, err := validation.ToInt(value)
		if err != nil {
			return nil, typeError(e, field, "integer", value)
		}

		return converted, nil
	}
}

// intGetter normalizes values stored raw, such as float64 from decoded JSON.
func intGetter(_ *Entity, value interface{}) interface{} {
	if value == nil {
		return nil
	}

	converted, err := validation.ToInt(value)
	if err != nil {
		return value
	}

	return converted
}

func floatSetter(field string) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}

		converted, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, typeError(e, field, "number", value)
		}

		return converted, nil
	}
}

func floatGetter(_ *Entity, value interface{}) interface{} {
	if value == nil {
		return nil
	}

	converted, err := cast.ToFloat64E(value)
	if err != nil {
		return value
	}

	return converted
}

func boolSetter(field string) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}

		converted, err := cast.ToBoolE(value)
		if err != nil {
			return nil, typeError(e, field, "boolean", value)
		}

		return converted, nil
	}
}

func boolGetter(_ *Entity, value interface{}) interface{} {
	if value == nil {
		return nil
	}

	converted, err := cast.ToBoolE(value)
	if err != nil {
		return value
	}

	return converted
}

func timeSetter(field string) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if value == nil || value == "" {
			return nil, nil
		}

		converted, err := cast.ToTimeE(value)
		if err != nil {
			return nil, typeError(e, field, "date time", value)
		}

		return converted, nil
	}
}

func timeGetter(_ *Entity, value interface{}) interface{} {
	if text, ok := value.(string); ok {
		if converted, err := cast.ToTimeE(text); err == nil {
			return converted
		}
	}

	return value
}

func encodeTime(value interface{}) (interface{}, error) {
	if moment, ok := value.(time.Time); ok {
		return moment.Format(time.RFC3339), nil
	}

	return value, nil
}

func trimmedStringSetter(field string) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}

		converted, err := cast.ToStringE(value)
		if err != nil {
			return nil, typeError(e, field, "text", value)
		}

		return strings.TrimSpace(converted), nil
	}
}

func stringListSetter(field string) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if value == nil {
			return nil, nil
		}

		if text, ok := value.(string); ok {
			return splitList(text), nil
		}

		converted, err := cast.ToStringSliceE(value)
		if err != nil {
			return nil, typeError(e, field, "list of text", value)
		}

		return cleanList(converted), nil
	}
}

func splitList(text string) []string {
	return cleanList(strings.Split(text, ","))
}

func cleanList(items []string) []string {
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}

// typed readers shared by the concrete entities.

func (e *Entity) intValue(field string) int {
	number, _ := validation.ToInt(e.value(field))

	return number
}

func (e *Entity) stringValue(field string) string {
	return cast.ToString(e.value(field))
}

func (e *Entity) boolValue(field string) bool {
	return cast.ToBool(e.value(field))
}

func (e *Entity) floatValue(field string) float64 {
	return cast.ToFloat64(e.value(field))
}

func (e *Entity) timeValue(field string) time.Time {
	if moment, ok := e.value(field).(time.Time); ok {
		return moment
	}

	return time.Time{}
}

func (e *Entity) stringsValue(field string) []string {
	return cast.ToStringSlice(e.value(field))
}

// langSetter validates the entity language and makes it the default for
// multilingual fields set afterwards.
func langSetter(e *Entity, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	lang, ok := value.(string)
	if !ok || !validation.IsLanguage(lang) {
		return nil, &DomainError{
			Entity:  e.schema.Name(),
			Field:   "lang",
			Rule:    constants.RuleFormat,
			Message: fmt.Sprintf("invalid language code %v", value),
			Err:     ErrInvalidLanguage,
		}
	}

	e.lang = lang

	return lang, nil
}

package openagenda

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

// Multilingual maps ISO 639-1 language codes to text.
type Multilingual map[string]string

// Lang returns the text for code, or "" when absent.
func (m Multilingual) Lang(code string) string {
	return m[code]
}

// Langs returns the language codes present, sorted.
func (m Multilingual) Langs() []string {
	langs := make([]string, 0, len(m))
	for lang := range m {
		langs = append(langs, lang)
	}

	sort.Strings(langs)

	return langs
}

// ToMap exposes the value as a plain map.
func (m Multilingual) ToMap() map[string]interface{} {
	result := make(map[string]interface{}, len(m))
	for lang, text := range m {
		result[lang] = text
	}

	return result
}

// HTMLMode selects how markup in multilingual text is handled.
type HTMLMode int

// HTML handling modes.
const (
	HTMLNone HTMLMode = iota
	HTMLPlain
	HTMLRich
)

// MultilingualOptions tunes NormalizeMultilingual.
type MultilingualOptions struct {
	// Lang wraps a plain string under this code. DefaultLang applies when empty.
	Lang        string
	DefaultLang string
	// Max truncates each text to this many runes when positive.
	Max     int
	HTML    HTMLMode
	BaseURL string

	// Entity and Field label domain errors.
	Entity string
	Field  string
}

func (o MultilingualOptions) lang() string {
	if o.Lang != "" {
		return o.Lang
	}

	if o.DefaultLang != "" {
		return o.DefaultLang
	}

	return constants.DefaultLang
}

// NormalizeMultilingual turns a plain string or a language map into a
// Multilingual, checking codes and cleaning then truncating each text.
func NormalizeMultilingual(value interface{}, opts MultilingualOptions) (Multilingual, error) {
	var raw map[string]string

	switch typed := value.(type) {
	case nil:
		return nil, nil
	case string:
		raw = map[string]string{opts.lang(): typed}
	case Multilingual:
		raw = typed
	case map[string]string:
		raw = typed
	case map[string]interface{}:
		raw = make(map[string]string, len(typed))

		for lang, text := range typed {
			converted, err := cast.ToStringE(text)
			if err != nil {
				return nil, &DomainError{
					Entity:  opts.Entity,
					Field:   opts.Field,
					Rule:    constants.RuleType,
					Message: fmt.Sprintf("value for %q is not text", lang),
					Err:     ErrInvalidInput,
				}
			}

			raw[lang] = converted
		}
	default:
		return nil, &DomainError{
			Entity:  opts.Entity,
			Field:   opts.Field,
			Rule:    constants.RuleType,
			Message: fmt.Sprintf("expected text or language map, got %T", value),
			Err:     ErrInvalidInput,
		}
	}

	result := make(Multilingual, len(raw))

	for lang, text := range raw {
		if !validation.IsLanguage(lang) {
			return nil, &DomainError{
				Entity:  opts.Entity,
				Field:   opts.Field,
				Rule:    constants.RuleFormat,
				Message: fmt.Sprintf("invalid language code %q", lang),
				Err:     ErrInvalidLanguage,
			}
		}

		cleaned, err := cleanText(text, opts)
		if err != nil {
			return nil, fmt.Errorf("cleaning %s[%s]: %w", opts.Field, lang, err)
		}

		result[lang] = validation.Truncate(cleaned, opts.Max)
	}

	return result, nil
}

func cleanText(text string, opts MultilingualOptions) (string, error) {
	switch opts.HTML {
	case HTMLPlain:
		return validation.PlainText(text), nil
	case HTMLRich:
		return validation.RichText(text, opts.BaseURL)
	default:
		return strings.TrimSpace(text), nil
	}
}

// setMultilingual normalizes value for field and marks each language as a
// dirty sub-key.
func (e *Entity) setMultilingual(field string, value interface{}, opts MultilingualOptions) (interface{}, error) {
	opts.DefaultLang = e.Lang()
	opts.Entity = e.schema.Name()
	opts.Field = field

	if opts.BaseURL == "" {
		opts.BaseURL = e.baseURL
	}

	normalized, err := NormalizeMultilingual(value, opts)
	if err != nil {
		return nil, err
	}

	for _, lang := range normalized.Langs() {
		e.SetDirtyKey(DirtyKey{Field: field, Sub: lang}, true)
	}

	if normalized == nil {
		return nil, nil
	}

	return normalized, nil
}

// multilingualSetter builds a schema setter for a multilingual field.
func multilingualSetter(field string, opts MultilingualOptions) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		return e.setMultilingual(field, value, opts)
	}
}

// multilingualGetter reads a stored value back as a Multilingual. Values
// assigned without setters may still be plain maps.
func multilingualGetter(_ *Entity, value interface{}) interface{} {
	switch typed := value.(type) {
	case Multilingual:
		return typed
	case map[string]string:
		return Multilingual(typed)
	case map[string]interface{}:
		result := make(Multilingual, len(typed))
		for lang, text := range typed {
			result[lang] = cast.ToString(text)
		}

		return result
	case string:
		return typed
	default:
		return value
	}
}

// multilingualValue returns the Multilingual stored under field, or nil.
func (e *Entity) multilingualValue(field string) Multilingual {
	if value, ok := e.value(field).(Multilingual); ok {
		return value
	}

	return nil
}

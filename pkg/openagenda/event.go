package openagenda

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cast"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

//nolint:gochecknoglobals
var eventSchema = NewSchema("event", SchemaConfig{
	Aliases: map[string]string{"id": "uid"},
	Accessors: map[string]Accessor{
		"uid":         {Get: intGetter, Set: intSetter("uid")},
		"agendaUid":   {Get: intGetter, Set: intSetter("agendaUid")},
		"locationUid": {Get: intGetter, Set: intSetter("locationUid")},
		"location":    {Get: locationGetter, Set: locationSetter},
		"title": {Get: multilingualGetter, Set: multilingualSetter("title",
			MultilingualOptions{Max: constants.EventTitleMax, HTML: HTMLPlain})},
		"description": {Get: multilingualGetter, Set: multilingualSetter("description",
			MultilingualOptions{Max: constants.EventDescriptionMax, HTML: HTMLPlain})},
		"longDescription": {Get: multilingualGetter, Set: multilingualSetter("longDescription",
			MultilingualOptions{Max: constants.EventLongDescriptionMax, HTML: HTMLRich})},
		"conditions": {Get: multilingualGetter, Set: multilingualSetter("conditions",
			MultilingualOptions{Max: constants.EventConditionsMax, HTML: HTMLPlain})},
		"keywords":         {Get: keywordsGetter, Set: keywordsSetter},
		"timings":          {Get: timingsGetter, Set: timingsSetter},
		"age":              {Get: ageGetter, Set: ageSetter},
		"accessibility":    {Get: accessibilityGetter, Set: accessibilitySetter},
		"attendanceMode":   {Get: enumGetter(ParseAttendanceMode), Set: enumSetter("attendanceMode", ParseAttendanceMode)},
		"onlineAccessLink": {Set: trimmedStringSetter("onlineAccessLink")},
		"state":            {Get: enumGetter(ParseEventState), Set: enumSetter("state", ParseEventState)},
		"status":           {Get: enumGetter(ParseEventStatus), Set: enumSetter("status", ParseEventStatus)},
		"image":            {Get: imageGetter, Set: imageSetter},
		"imageCredits":     {Set: trimmedStringSetter("imageCredits")},
		"registration":     {Set: stringListSetter("registration")},
		"featured":         {Get: boolGetter, Set: boolSetter("featured")},
		"extId":            {Set: trimmedStringSetter("extId")},
		"createdAt":        {Get: timeGetter, Set: timeSetter("createdAt")},
		"updatedAt":        {Get: timeGetter, Set: timeSetter("updatedAt")},
	},
	Priority: []string{"location", "locationUid"},
	Wire: []WireField{
		{Name: "uid", Encode: encodeInt, ReadOnly: true},
		{Name: "agendaUid", Encode: encodeInt, ReadOnly: true},
		{Name: "locationUid", Encode: encodeInt},
		{Name: "title", Encode: encodeMapper, Required: true},
		{Name: "description", Encode: encodeMapper, Required: true},
		{Name: "longDescription", Encode: encodeMapper},
		{Name: "conditions", Encode: encodeMapper},
		{Name: "keywords", Encode: encodeKeywords},
		{Name: "timings", Encode: encodeTimings, Required: true},
		{Name: "age", Encode: encodeMapper},
		{Name: "accessibility", Encode: encodeMapper},
		{Name: "attendanceMode", Encode: encodeInt},
		{Name: "onlineAccessLink"},
		{Name: "state", Encode: encodeInt},
		{Name: "status", Encode: encodeInt},
		{Name: "image", Encode: encodeImage},
		{Name: "imageCredits"},
		{Name: "registration"},
		{Name: "featured"},
		{Name: "extId"},
		{Name: "createdAt", Encode: encodeTime, ReadOnly: true},
		{Name: "updatedAt", Encode: encodeTime, ReadOnly: true},
	},
})

// Event is a dated happening published in an agenda.
type Event struct {
	Entity
}

// NewEvent builds an event from props.
func NewEvent(props map[string]interface{}, opts ...Option) (*Event, error) {
	event := &Event{}
	if err := event.init(eventSchema, props, opts...); err != nil {
		return nil, err
	}

	return event, nil
}

// EventFromWire hydrates a persisted, clean event from an API payload.
func EventFromWire(data map[string]interface{}, opts ...Option) (*Event, error) {
	return NewEvent(fromWire(eventSchema, data), wireOptions(opts)...)
}

// locationSetter embeds a location and copies its uid to locationUid.
func locationSetter(e *Entity, value interface{}) (interface{}, error) {
	var location *Location

	switch typed := value.(type) {
	case nil:
		return nil, nil
	case *Location:
		if typed == nil {
			return nil, nil
		}

		location = typed
	case map[string]interface{}:
		built, err := NewLocation(typed, WithLang(e.Lang()), WithBaseURL(e.baseURL))
		if err != nil {
			return nil, fmt.Errorf("building location: %w", err)
		}

		location = built
	default:
		return nil, typeError(e, "location", "location or map", value)
	}

	if uid := location.UID(); uid > 0 {
		e.properties["locationUid"] = uid
		e.SetDirty("locationUid", true)
	}

	return location, nil
}

func locationGetter(e *Entity, value interface{}) interface{} {
	data, ok := value.(map[string]interface{})
	if !ok {
		return value
	}

	location, err := LocationFromWire(data, WithLang(e.Lang()))
	if err != nil {
		return value
	}

	return location
}

// Keywords maps a language code to its keyword list.
type Keywords map[string][]string

// ToMap exposes the value as a plain map.
func (k Keywords) ToMap() map[string]interface{} {
	result := make(map[string]interface{}, len(k))
	for lang, words := range k {
		result[lang] = append([]string(nil), words...)
	}

	return result
}

func parseKeywords(value interface{}, lang string) (Keywords, error) {
	switch typed := value.(type) {
	case nil:
		return nil, nil
	case Keywords:
		return typed, nil
	case map[string][]string:
		return Keywords(typed), nil
	case string:
		return Keywords{lang: splitList(typed)}, nil
	case []string:
		return Keywords{lang: cleanList(typed)}, nil
	case []interface{}:
		words, err := cast.ToStringSliceE(typed)
		if err != nil {
			return nil, fmt.Errorf("parsing keywords: %w", err)
		}

		return Keywords{lang: cleanList(words)}, nil
	case map[string]interface{}:
		result := make(Keywords, len(typed))

		for code, words := range typed {
			converted, err := cast.ToStringSliceE(words)
			if err != nil {
				return nil, fmt.Errorf("parsing keywords %s: %w", code, err)
			}

			result[code] = converted
		}

		return result, nil
	default:
		return nil, fmt.Errorf("unsupported keywords %T: %w", value, ErrInvalidInput)
	}
}

func keywordsSetter(e *Entity, value interface{}) (interface{}, error) {
	keywords, err := parseKeywords(value, e.Lang())
	if err != nil {
		return nil, &DomainError{Entity: e.schema.Name(), Field: "keywords", Rule: constants.RuleType, Message: err.Error(), Err: err}
	}

	if keywords == nil {
		return nil, nil
	}

	result := make(Keywords, len(keywords))

	for lang, words := range keywords {
		if !validation.IsLanguage(lang) {
			return nil, &DomainError{
				Entity:  e.schema.Name(),
				Field:   "keywords",
				Rule:    constants.RuleFormat,
				Message: fmt.Sprintf("invalid language code %q", lang),
				Err:     ErrInvalidLanguage,
			}
		}

		cleaned := make([]string, 0, len(words))
		for _, word := range words {
			word = validation.Truncate(validation.PlainText(word), constants.EventKeywordMax)
			if word != "" {
				cleaned = append(cleaned, word)
			}
		}

		result[lang] = cleaned
		e.SetDirtyKey(DirtyKey{Field: "keywords", Sub: lang}, true)
	}

	return result, nil
}

func keywordsGetter(e *Entity, value interface{}) interface{} {
	keywords, err := parseKeywords(value, e.Lang())
	if err != nil || keywords == nil {
		return value
	}

	return keywords
}

func encodeKeywords(value interface{}) (interface{}, error) {
	keywords, ok := value.(Keywords)
	if !ok {
		return value, nil
	}

	return keywords.ToMap(), nil
}

func timingsGetter(_ *Entity, value interface{}) interface{} {
	timings, err := ParseTimings(value)
	if err != nil || timings == nil {
		return value
	}

	return timings
}

func ageGetter(_ *Entity, value interface{}) interface{} {
	if value == nil {
		return nil
	}

	age, err := ParseAge(value)
	if err != nil {
		return value
	}

	return age
}

func accessibilityGetter(_ *Entity, value interface{}) interface{} {
	if value == nil {
		return nil
	}

	accessibility, err := ParseAccessibility(value)
	if err != nil {
		return value
	}

	return accessibility
}

func enumGetter[T any](parse func(interface{}) (T, error)) Getter {
	return func(_ *Entity, value interface{}) interface{} {
		if value == nil {
			return nil
		}

		parsed, err := parse(value)
		if err != nil {
			return value
		}

		return parsed
	}
}

// UID returns the event identifier, 0 when unset.
func (ev *Event) UID() int {
	return ev.intValue("uid")
}

// AgendaUID returns the agenda the event belongs to.
func (ev *Event) AgendaUID() int {
	return ev.intValue("agendaUid")
}

// LocationUID returns the venue identifier, 0 when unset.
func (ev *Event) LocationUID() int {
	return ev.intValue("locationUid")
}

// Location returns the embedded location, if any.
func (ev *Event) Location() *Location {
	location, _ := ev.value("location").(*Location)

	return location
}

// Title returns the title per language.
func (ev *Event) Title() Multilingual {
	return ev.multilingualValue("title")
}

// Description returns the short description per language.
func (ev *Event) Description() Multilingual {
	return ev.multilingualValue("description")
}

// LongDescription returns the markdown long description per language.
func (ev *Event) LongDescription() Multilingual {
	return ev.multilingualValue("longDescription")
}

// LongDescriptionHTML renders the long description in lang as HTML.
func (ev *Event) LongDescriptionHTML(lang string) (string, error) {
	source := ev.LongDescription().Lang(lang)
	if source == "" {
		return "", nil
	}

	rendered, err := validation.MarkdownToHTML(source)
	if err != nil {
		return "", fmt.Errorf("rendering long description: %w", err)
	}

	return rendered, nil
}

// Conditions returns the participation conditions per language.
func (ev *Event) Conditions() Multilingual {
	return ev.multilingualValue("conditions")
}

// Keywords returns the keyword lists per language.
func (ev *Event) Keywords() Keywords {
	keywords, _ := ev.value("keywords").(Keywords)

	return keywords
}

// Timings returns the occurrences sorted by begin time.
func (ev *Event) Timings() []Timing {
	timings, _ := ev.value("timings").([]Timing)

	sorted := append([]Timing(nil), timings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Begin.Before(sorted[j].Begin)
	})

	return sorted
}

// Age returns the audience age range.
func (ev *Event) Age() Age {
	age, _ := ev.value("age").(Age)

	return age
}

// Accessibility returns the accessibility flags.
func (ev *Event) Accessibility() Accessibility {
	accessibility, _ := ev.value("accessibility").(Accessibility)

	return accessibility
}

// AttendanceMode returns the attendance mode, offline when unset.
func (ev *Event) AttendanceMode() AttendanceMode {
	mode, ok := ev.value("attendanceMode").(AttendanceMode)
	if !ok {
		return AttendanceOffline
	}

	return mode
}

// OnlineAccessLink returns the link to attend online.
func (ev *Event) OnlineAccessLink() string {
	return ev.stringValue("onlineAccessLink")
}

// State returns the moderation state.
func (ev *Event) State() EventState {
	state, _ := ev.value("state").(EventState)

	return state
}

// Status returns the scheduling status, scheduled when unset.
func (ev *Event) Status() EventStatus {
	status, ok := ev.value("status").(EventStatus)
	if !ok {
		return StatusScheduled
	}

	return status
}

// Image returns the event picture, if any.
func (ev *Event) Image() *Image {
	image, _ := ev.value("image").(*Image)

	return image
}

// ExtID returns the caller-side identifier.
func (ev *Event) ExtID() string {
	return ev.stringValue("extId")
}

// Featured reports whether the event is pinned in its agenda.
func (ev *Event) Featured() bool {
	return ev.boolValue("featured")
}

// CreatedAt returns the creation time.
func (ev *Event) CreatedAt() time.Time {
	return ev.timeValue("createdAt")
}

// UpdatedAt returns the last update time.
func (ev *Event) UpdatedAt() time.Time {
	return ev.timeValue("updatedAt")
}

// RuleFields returns the fields the standalone event predicates read.
func (ev *Event) RuleFields() map[string]interface{} {
	return ev.Extract([]string{"attendanceMode", "location", "locationUid", "onlineAccessLink", "timings", "age", "accessibility"}, false)
}

// Check runs the standalone predicates and reports every failure.
func (ev *Event) Check() error {
	fields := ev.RuleFields()
	errs := NewValidationError()

	if !CheckTimings(fields["timings"]) {
		errs.Add("timings", constants.RuleCustom, "at least one timing beginning before it ends is required")
	}

	if age, ok := fields["age"]; ok && !CheckAge(age) {
		errs.Add("age", constants.RuleCustom, "age range is inconsistent")
	}

	if accessibility, ok := fields["accessibility"]; ok && !CheckAccessibility(accessibility) {
		errs.Add("accessibility", constants.RuleInList, "unknown accessibility flag")
	}

	if !CheckLocation(fields) {
		errs.Add("locationUid", constants.RuleRequired, "a location is required unless the event is online")
	}

	if !CheckOnlineAccessLink(fields) {
		errs.Add("onlineAccessLink", constants.RuleRequired, "an online access link is required for online and mixed events")
	}

	return errs.OrNil()
}

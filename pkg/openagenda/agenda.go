package openagenda

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

//nolint:gochecknoglobals
var agendaSchema = NewSchema("agenda", SchemaConfig{
	Aliases: map[string]string{"id": "uid"},
	Accessors: map[string]Accessor{
		"uid":         {Get: intGetter, Set: intSetter("uid")},
		"network":     {Get: intGetter, Set: intSetter("network")},
		"locationSet": {Get: intGetter, Set: intSetter("locationSet")},
		"official":    {Get: boolGetter, Set: boolSetter("official")},
		"private":     {Get: boolGetter, Set: boolSetter("private")},
		"indexed":     {Get: boolGetter, Set: boolSetter("indexed")},
		"title":       {Get: multilingualGetter, Set: agendaTextSetter("title")},
		"description": {Get: multilingualGetter, Set: agendaTextSetter("description")},
		"slug":        {Set: trimmedStringSetter("slug")},
		"lang":        {Set: langSetter},
		"category":    {Get: categoryGetter, Set: categorySetter},
		"image":       {Get: imageGetter, Set: imageSetter},
		"createdAt":   {Get: timeGetter, Set: timeSetter("createdAt")},
		"updatedAt":   {Get: timeGetter, Set: timeSetter("updatedAt")},
	},
	Priority: []string{"lang"},
	Wire: []WireField{
		{Name: "uid", Encode: encodeInt, ReadOnly: true},
		{Name: "title", Encode: encodeMapper},
		{Name: "description", Encode: encodeMapper},
		{Name: "slug"},
		{Name: "url"},
		{Name: "image", Encode: encodeImage},
		{Name: "official"},
		{Name: "private"},
		{Name: "indexed"},
		{Name: "network", Encode: encodeInt},
		{Name: "locationSet", Encode: encodeInt},
		{Name: "lang"},
		{Name: "category"},
		{Name: "summary"},
		{Name: "createdAt", Encode: encodeTime, ReadOnly: true},
		{Name: "updatedAt", Encode: encodeTime, ReadOnly: true},
	},
})

// Agenda is a collection of events published under one slug.
type Agenda struct {
	Entity
}

// NewAgenda builds an agenda from props, running setters unless
// WithoutSetters is given.
func NewAgenda(props map[string]interface{}, opts ...Option) (*Agenda, error) {
	agenda := &Agenda{}
	if err := agenda.init(agendaSchema, props, opts...); err != nil {
		return nil, err
	}

	return agenda, nil
}

// AgendaFromWire hydrates a persisted, clean agenda from an API payload.
func AgendaFromWire(data map[string]interface{}, opts ...Option) (*Agenda, error) {
	return NewAgenda(fromWire(agendaSchema, data), wireOptions(opts)...)
}

// agendaTextSetter keeps plain strings as they are; agenda titles are not
// translated upstream. Maps are validated as multilingual values.
func agendaTextSetter(field string) Setter {
	return func(e *Entity, value interface{}) (interface{}, error) {
		if text, ok := value.(string); ok {
			return strings.TrimSpace(text), nil
		}

		return e.setMultilingual(field, value, MultilingualOptions{})
	}
}

func categorySetter(e *Entity, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	var items []string

	if text, ok := value.(string); ok {
		items = splitList(text)
	} else {
		converted, err := cast.ToStringSliceE(value)
		if err != nil {
			return nil, typeError(e, "category", "text or list of text", value)
		}

		items = cleanList(converted)
	}

	return strings.Join(items, ","), nil
}

func categoryGetter(_ *Entity, value interface{}) interface{} {
	switch value.(type) {
	case nil, string:
		return value
	}

	converted, err := cast.ToStringSliceE(value)
	if err != nil {
		return value
	}

	return strings.Join(cleanList(converted), ",")
}

func imageGetter(_ *Entity, value interface{}) interface{} {
	if value == nil {
		return nil
	}

	if image, ok := value.(*Image); ok {
		return image
	}

	image, err := NewImage(value)
	if err != nil || image == nil {
		return value
	}

	return image
}

// UID returns the agenda identifier, 0 when unset.
func (a *Agenda) UID() int {
	return a.intValue("uid")
}

// Title returns the title as stored: a string or a Multilingual.
func (a *Agenda) Title() interface{} {
	return a.value("title")
}

// Slug returns the agenda slug.
func (a *Agenda) Slug() string {
	return a.stringValue("slug")
}

// URL returns the public page of the agenda.
func (a *Agenda) URL() string {
	return a.stringValue("url")
}

// Official reports whether the agenda is certified by OpenAgenda.
func (a *Agenda) Official() bool {
	return a.boolValue("official")
}

// Private reports whether the agenda is hidden from search.
func (a *Agenda) Private() bool {
	return a.boolValue("private")
}

// Category returns the comma-joined category list.
func (a *Agenda) Category() string {
	return a.stringValue("category")
}

// CreatedAt returns the creation time.
func (a *Agenda) CreatedAt() time.Time {
	return a.timeValue("createdAt")
}

// UpdatedAt returns the last update time.
func (a *Agenda) UpdatedAt() time.Time {
	return a.timeValue("updatedAt")
}

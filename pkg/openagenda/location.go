package openagenda

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
	"github.com/Erwane/openagenda-api-sub000/internal/validation"
)

//nolint:gochecknoglobals
var locationSchema = NewSchema("location", SchemaConfig{
	Aliases: map[string]string{"id": "uid"},
	Accessors: map[string]Accessor{
		"uid":          {Get: intGetter, Set: intSetter("uid")},
		"agendaUid":    {Get: intGetter, Set: intSetter("agendaUid")},
		"name":         {Set: trimmedStringSetter("name")},
		"address":      {Set: trimmedStringSetter("address")},
		"countryCode":  {Set: countryCodeSetter},
		"postalCode":   {Set: trimmedStringSetter("postalCode")},
		"city":         {Set: trimmedStringSetter("city")},
		"latitude":     {Get: floatGetter, Set: floatSetter("latitude")},
		"longitude":    {Get: floatGetter, Set: floatSetter("longitude")},
		"access":       {Get: multilingualGetter, Set: multilingualSetter("access", MultilingualOptions{Max: constants.LocationAccessMax, HTML: HTMLPlain})},
		"description":  {Get: multilingualGetter, Set: multilingualSetter("description", MultilingualOptions{Max: constants.LocationDescriptionMax, HTML: HTMLPlain})},
		"state":        {Get: boolGetter, Set: boolSetter("state")},
		"extId":        {Set: trimmedStringSetter("extId")},
		"phone":        {Set: phoneSetter},
		"email":        {Set: emailSetter},
		"website":      {Set: trimmedStringSetter("website")},
		"links":        {Set: stringListSetter("links")},
		"image":        {Get: imageGetter, Set: imageSetter},
		"imageCredits": {Set: trimmedStringSetter("imageCredits")},
		"createdAt":    {Get: timeGetter, Set: timeSetter("createdAt")},
		"updatedAt":    {Get: timeGetter, Set: timeSetter("updatedAt")},
	},
	Priority: []string{"countryCode"},
	Wire: []WireField{
		{Name: "uid", Encode: encodeInt, ReadOnly: true},
		{Name: "agendaUid", Encode: encodeInt, ReadOnly: true},
		{Name: "name", Required: true},
		{Name: "address", Required: true},
		{Name: "countryCode", Required: true},
		{Name: "postalCode"},
		{Name: "city"},
		{Name: "department"},
		{Name: "region"},
		{Name: "district"},
		{Name: "insee"},
		{Name: "latitude"},
		{Name: "longitude"},
		{Name: "access", Encode: encodeMapper},
		{Name: "description", Encode: encodeMapper},
		{Name: "state"},
		{Name: "extId"},
		{Name: "phone"},
		{Name: "email"},
		{Name: "website"},
		{Name: "links"},
		{Name: "timezone"},
		{Name: "image", Encode: encodeImage},
		{Name: "imageCredits"},
		{Name: "createdAt", Encode: encodeTime, ReadOnly: true},
		{Name: "updatedAt", Encode: encodeTime, ReadOnly: true},
	},
})

// Location is a venue events take place at.
type Location struct {
	Entity
}

// NewLocation builds a location from props.
func NewLocation(props map[string]interface{}, opts ...Option) (*Location, error) {
	location := &Location{}
	if err := location.init(locationSchema, props, opts...); err != nil {
		return nil, err
	}

	return location, nil
}

// LocationFromWire hydrates a persisted, clean location from an API payload.
func LocationFromWire(data map[string]interface{}, opts ...Option) (*Location, error) {
	return NewLocation(fromWire(locationSchema, data), wireOptions(opts)...)
}

func countryCodeSetter(e *Entity, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	code := strings.ToUpper(strings.TrimSpace(cast.ToString(value)))
	if len(code) != 2 {
		return nil, newDomainError(e.schema.Name(), "countryCode", constants.RuleFormat,
			fmt.Sprintf("%q is not a two-letter country code", code))
	}

	return code, nil
}

// phoneSetter formats numbers internationally, reading the region from the
// country code already set.
func phoneSetter(e *Entity, value interface{}) (interface{}, error) {
	number := strings.TrimSpace(cast.ToString(value))
	if number == "" {
		return nil, nil
	}

	region := cast.ToString(e.properties["countryCode"])
	if region == "" {
		region = constants.DefaultPhoneRegion
	}

	formatted, ok := validation.Phone(number, region)
	if !ok {
		return nil, newDomainError(e.schema.Name(), "phone", constants.RuleFormat,
			fmt.Sprintf("%q is not a valid phone number", number))
	}

	return formatted, nil
}

func emailSetter(e *Entity, value interface{}) (interface{}, error) {
	email := strings.TrimSpace(cast.ToString(value))
	if email == "" {
		return nil, nil
	}

	at := strings.LastIndex(email, "@")
	if at < 1 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return nil, newDomainError(e.schema.Name(), "email", constants.RuleFormat,
			fmt.Sprintf("%q is not a valid email address", email))
	}

	return email, nil
}

// UID returns the location identifier, 0 when unset.
func (l *Location) UID() int {
	return l.intValue("uid")
}

// AgendaUID returns the owning agenda identifier.
func (l *Location) AgendaUID() int {
	return l.intValue("agendaUid")
}

// Name returns the venue name.
func (l *Location) Name() string {
	return l.stringValue("name")
}

// Address returns the postal address.
func (l *Location) Address() string {
	return l.stringValue("address")
}

// City returns the city.
func (l *Location) City() string {
	return l.stringValue("city")
}

// CountryCode returns the upper-cased two-letter country code.
func (l *Location) CountryCode() string {
	return l.stringValue("countryCode")
}

// Latitude returns the latitude.
func (l *Location) Latitude() float64 {
	return l.floatValue("latitude")
}

// Longitude returns the longitude.
func (l *Location) Longitude() float64 {
	return l.floatValue("longitude")
}

// ExtID returns the caller-side identifier.
func (l *Location) ExtID() string {
	return l.stringValue("extId")
}

// State reports whether the location is verified.
func (l *Location) State() bool {
	return l.boolValue("state")
}

// Phone returns the internationally formatted phone number.
func (l *Location) Phone() string {
	return l.stringValue("phone")
}

// Links returns the related links.
func (l *Location) Links() []string {
	return l.stringsValue("links")
}

// Access returns the access instructions per language.
func (l *Location) Access() Multilingual {
	return l.multilingualValue("access")
}

// Description returns the description per language.
func (l *Location) Description() Multilingual {
	return l.multilingualValue("description")
}

// CreatedAt returns the creation time.
func (l *Location) CreatedAt() time.Time {
	return l.timeValue("createdAt")
}

// UpdatedAt returns the last update time.
func (l *Location) UpdatedAt() time.Time {
	return l.timeValue("updatedAt")
}

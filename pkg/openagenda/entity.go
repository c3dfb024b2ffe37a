package openagenda

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/Erwane/openagenda-api-sub000/internal/constants"
)

// DirtyKey identifies a dirty field, or one language of a multilingual field
// when Sub is set.
type DirtyKey struct {
	Field string
	Sub   string
}

// String renders the key as field or field[sub].
func (k DirtyKey) String() string {
	if k.Sub == "" {
		return k.Field
	}

	return k.Field + "[" + k.Sub + "]"
}

// Property is one name/value pair for order-preserving mass assignment.
type Property struct {
	Name  string
	Value interface{}
}

// Mapper is implemented by values that expand to plain maps in ToMap.
type Mapper interface {
	ToMap() map[string]interface{}
}

// Option configures entity construction.
type Option func(*entityOptions)

type entityOptions struct {
	rawAssign bool
	clean     bool
	persisted bool
	lang      string
	baseURL   string
}

// WithoutSetters assigns constructor properties directly, bypassing setters.
// Fields are still marked dirty unless MarkClean is also given.
func WithoutSetters() Option {
	return func(o *entityOptions) {
		o.rawAssign = true
	}
}

// MarkClean empties the dirty set once construction completes.
func MarkClean() Option {
	return func(o *entityOptions) {
		o.clean = true
	}
}

// Persisted marks the entity as already stored remotely.
func Persisted() Option {
	return func(o *entityOptions) {
		o.persisted = true
	}
}

// WithLang sets the language plain strings are wrapped with in multilingual
// fields.
func WithLang(lang string) Option {
	return func(o *entityOptions) {
		o.lang = lang
	}
}

// WithBaseURL sets the URL relative links in rich text are resolved against.
func WithBaseURL(baseURL string) Option {
	return func(o *entityOptions) {
		o.baseURL = baseURL
	}
}

// Entity is a mutable attribute bag with dirty tracking. Concrete types embed
// it and register a Schema holding their accessor overrides.
type Entity struct {
	schema     *Schema
	properties map[string]interface{}
	dirty      []DirtyKey
	isNew      bool
	lang       string
	baseURL    string
}

func (e *Entity) init(schema *Schema, props map[string]interface{}, opts ...Option) error {
	options := entityOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	e.schema = schema
	e.properties = make(map[string]interface{}, len(props))
	e.isNew = !options.persisted
	e.lang = options.lang
	e.baseURL = options.baseURL

	if e.lang == "" {
		e.lang = constants.DefaultLang
	}

	var err error
	if options.rawAssign {
		err = e.SetMany(props, SkipSetters())
	} else {
		err = e.SetMany(props)
	}

	if err != nil {
		return err
	}

	if options.clean {
		e.Clean()
	}

	return nil
}

func (e *Entity) ensure() {
	if e.properties == nil {
		e.properties = make(map[string]interface{})
		e.isNew = true
	}

	if e.lang == "" {
		e.lang = constants.DefaultLang
	}
}

// Schema returns the dispatch table of the concrete type.
func (e *Entity) Schema() *Schema {
	return e.schema
}

// Lang returns the default language used by multilingual setters.
func (e *Entity) Lang() string {
	e.ensure()

	return e.lang
}

// BaseURL returns the URL relative rich-text links are resolved against.
func (e *Entity) BaseURL() string {
	return e.baseURL
}

// Set stores value under name, routing it through the registered setter, and
// marks name dirty.
func (e *Entity) Set(name string, value interface{}) error {
	return e.set(name, value, true)
}

// SetRaw stores value under name without calling the setter. The field is
// still marked dirty.
func (e *Entity) SetRaw(name string, value interface{}) error {
	return e.set(name, value, false)
}

func (e *Entity) set(name string, value interface{}, useAccessor bool) error {
	if name == "" {
		return &DomainError{
			Entity:  e.schema.Name(),
			Rule:    "field",
			Message: "cannot set an empty field name",
			Err:     ErrInvalidInput,
		}
	}

	e.ensure()

	field := e.schema.Resolve(name)

	if useAccessor {
		if accessor, ok := e.schema.Accessor(field); ok && accessor.Set != nil {
			transformed, err := accessor.Set(e, value)
			if err != nil {
				return err
			}

			value = transformed
		}
	}

	e.properties[field] = value
	e.SetDirty(field, true)

	return nil
}

// SetOption tunes SetMany.
type SetOption func(*setOptions)

type setOptions struct {
	skipSetters bool
}

// SkipSetters makes SetMany store values as-is.
func SkipSetters() SetOption {
	return func(o *setOptions) {
		o.skipSetters = true
	}
}

// SetMany applies every property of props. Priority fields declared by the
// schema go first, the rest follow in key order. The first failing field
// aborts the assignment.
func (e *Entity) SetMany(props map[string]interface{}, opts ...SetOption) error {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}

	sort.SliceStable(names, func(i, j int) bool {
		rankI, okI := e.schema.rank(e.schema.Resolve(names[i]))
		rankJ, okJ := e.schema.rank(e.schema.Resolve(names[j]))

		switch {
		case okI && okJ:
			return rankI < rankJ
		case okI != okJ:
			return okI
		default:
			return names[i] < names[j]
		}
	})

	ordered := make([]Property, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, Property{Name: name, Value: props[name]})
	}

	return e.SetOrdered(ordered, opts...)
}

// SetOrdered applies properties in the given order; later duplicates win.
func (e *Entity) SetOrdered(props []Property, opts ...SetOption) error {
	options := setOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	e.ensure()

	for _, prop := range props {
		err := e.set(prop.Name, prop.Value, !options.skipSetters)
		if err != nil {
			return fmt.Errorf("setting %s.%s: %w", e.schema.Name(), prop.Name, err)
		}
	}

	return nil
}

// Get returns the value stored under name, routed through the registered
// getter. Absent fields read as nil.
func (e *Entity) Get(name string) (interface{}, error) {
	if name == "" {
		return nil, &DomainError{
			Entity:  e.schema.Name(),
			Rule:    "field",
			Message: "cannot get an empty field name",
			Err:     ErrInvalidInput,
		}
	}

	return e.value(name), nil
}

func (e *Entity) value(name string) interface{} {
	field := e.schema.Resolve(name)
	raw := e.properties[field]

	if accessor, ok := e.schema.Accessor(field); ok && accessor.Get != nil {
		return accessor.Get(e, raw)
	}

	return raw
}

// Raw returns the stored value without calling the getter.
func (e *Entity) Raw(name string) interface{} {
	return e.properties[e.schema.Resolve(name)]
}

// Has reports whether name holds a value.
func (e *Entity) Has(name string) bool {
	_, ok := e.properties[e.schema.Resolve(name)]

	return ok
}

// Unset removes name and marks it dirty.
func (e *Entity) Unset(name string) {
	field := e.schema.Resolve(name)
	if _, ok := e.properties[field]; !ok {
		return
	}

	delete(e.properties, field)
	e.SetDirty(field, true)
}

// Fields returns the names of all stored fields, sorted.
func (e *Entity) Fields() []string {
	fields := make([]string, 0, len(e.properties))
	for field := range e.properties {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	return fields
}

// SetDirty adds name to the dirty set, or removes it together with every
// sub-key when flag is false.
func (e *Entity) SetDirty(name string, flag bool) {
	field := e.schema.Resolve(name)

	if flag {
		e.SetDirtyKey(DirtyKey{Field: field}, true)

		return
	}

	kept := e.dirty[:0]

	for _, key := range e.dirty {
		if key.Field != field {
			kept = append(kept, key)
		}
	}

	e.dirty = kept
}

// SetDirtyKey adds or removes one structured dirty key.
func (e *Entity) SetDirtyKey(key DirtyKey, flag bool) {
	for index, existing := range e.dirty {
		if existing == key {
			if !flag {
				e.dirty = append(e.dirty[:index], e.dirty[index+1:]...)
			}

			return
		}
	}

	if flag {
		e.dirty = append(e.dirty, key)
	}
}

// IsDirty with no argument reports whether anything changed; with a field
// name it reports whether that field or any of its sub-keys changed.
func (e *Entity) IsDirty(name ...string) bool {
	if len(name) == 0 {
		return len(e.dirty) > 0
	}

	field := e.schema.Resolve(name[0])

	for _, key := range e.dirty {
		if key.Field == field {
			return true
		}
	}

	return false
}

// Dirty returns the dirty field names in the order they were first marked.
// Sub-keys collapse to their field.
func (e *Entity) Dirty() []string {
	seen := make(map[string]bool, len(e.dirty))
	fields := make([]string, 0, len(e.dirty))

	for _, key := range e.dirty {
		if seen[key.Field] {
			continue
		}

		seen[key.Field] = true
		fields = append(fields, key.Field)
	}

	return fields
}

// DirtyKeys returns a copy of the structured dirty set.
func (e *Entity) DirtyKeys() []DirtyKey {
	return append([]DirtyKey(nil), e.dirty...)
}

// Clean empties the dirty set.
func (e *Entity) Clean() {
	e.dirty = nil
}

// IsNew reports whether the entity has not been persisted yet.
func (e *Entity) IsNew() bool {
	return e.isNew || e.properties == nil
}

// SetNew sets the lifecycle flag.
func (e *Entity) SetNew(isNew bool) {
	e.ensure()
	e.isNew = isNew
}

// Extract returns the values of fields read through their getters. Absent
// fields are skipped, as are clean ones when onlyDirty is set.
func (e *Entity) Extract(fields []string, onlyDirty bool) map[string]interface{} {
	result := make(map[string]interface{}, len(fields))

	for _, name := range fields {
		if !e.Has(name) {
			continue
		}

		if onlyDirty && !e.IsDirty(name) {
			continue
		}

		result[name] = e.value(name)
	}

	return result
}

// ToMap returns every field read through its getter, nested entities and
// structured values expanded to plain maps.
func (e *Entity) ToMap() map[string]interface{} {
	result := make(map[string]interface{}, len(e.properties))

	for field := range e.properties {
		result[field] = expand(e.value(field))
	}

	return result
}

// ToWire exports the schema's wire fields. With onlyDirty, clean fields are
// skipped and required checks are relaxed.
func (e *Entity) ToWire(onlyDirty bool) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	for _, wire := range e.schema.WireFields() {
		if onlyDirty && !e.IsDirty(wire.Name) {
			continue
		}

		value := e.value(wire.Name)

		if isEmptyValue(value) {
			if wire.Required && !onlyDirty {
				return nil, newDomainError(e.schema.Name(), wire.Name, constants.RuleRequired, "is required")
			}

			if !e.Has(wire.Name) {
				continue
			}
		}

		if wire.Encode != nil && value != nil {
			encoded, err := wire.Encode(value)
			if err != nil {
				return nil, fmt.Errorf("encoding %s.%s: %w", e.schema.Name(), wire.Name, err)
			}

			value = encoded
		}

		result[wire.key()] = value
	}

	return result, nil
}

func expand(value interface{}) interface{} {
	if value == nil {
		return nil
	}

	if mapper, ok := value.(Mapper); ok {
		if isNilPointer(value) {
			return nil
		}

		return mapper.ToMap()
	}

	switch typed := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(typed))
		for key, item := range typed {
			result[key] = expand(item)
		}

		return result
	case []interface{}:
		result := make([]interface{}, len(typed))
		for index, item := range typed {
			result[index] = expand(item)
		}

		return result
	}

	reflected := reflect.ValueOf(value)
	if reflected.Kind() == reflect.Slice && reflected.Type().Elem().Implements(reflect.TypeOf((*Mapper)(nil)).Elem()) {
		result := make([]interface{}, reflected.Len())
		for index := range reflected.Len() {
			result[index] = expand(reflected.Index(index).Interface())
		}

		return result
	}

	return value
}

func isNilPointer(value interface{}) bool {
	reflected := reflect.ValueOf(value)

	return reflected.Kind() == reflect.Ptr && reflected.IsNil()
}

func isEmptyValue(value interface{}) bool {
	if value == nil || isNilPointer(value) {
		return true
	}

	reflected := reflect.ValueOf(value)

	switch reflected.Kind() {
	case reflect.String, reflect.Map, reflect.Slice:
		return reflected.Len() == 0
	default:
		return false
	}
}

// fromWire renames wire keys to field names.
func fromWire(schema *Schema, data map[string]interface{}) map[string]interface{} {
	props := make(map[string]interface{}, len(data))

	for key, value := range data {
		if len(key) > 0 && key[0] == '_' {
			continue
		}

		props[schema.wireName(key)] = value
	}

	return props
}

// wireOptions appends the options hydrating a trusted API payload: raw
// assignment, clean and persisted.
func wireOptions(opts []Option) []Option {
	return append(append([]Option(nil), opts...), WithoutSetters(), MarkClean(), Persisted())
}

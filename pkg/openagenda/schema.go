package openagenda

// Getter transforms a stored raw value (nil when absent) on read.
type Getter func(e *Entity, value interface{}) interface{}

// Setter transforms an incoming value before it is stored.
type Setter func(e *Entity, value interface{}) (interface{}, error)

// Accessor pairs the optional getter and setter registered for one field.
type Accessor struct {
	Get Getter
	Set Setter
}

// WireField describes how one in-memory field is exported to the wire.
type WireField struct {
	// Name is the in-memory field name.
	Name string
	// Key is the wire key; Name is used when empty.
	Key string
	// Encode converts the value read through the getter to its wire form.
	Encode func(value interface{}) (interface{}, error)
	// Required fields must be present and non-empty on a full export.
	Required bool
	// ReadOnly fields are exported by ToWire but never sent in request bodies.
	ReadOnly bool
}

func (f WireField) key() string {
	if f.Key != "" {
		return f.Key
	}

	return f.Name
}

// SchemaConfig declares the accessor table of a concrete entity type.
type SchemaConfig struct {
	Accessors map[string]Accessor
	Aliases   map[string]string
	Wire      []WireField
	// Priority fields are applied first by SetMany, in this order, so setters
	// that read sibling fields see them already normalized.
	Priority []string
}

// Schema is the per-type dispatch table built once when a concrete entity
// type registers itself. Entities of different types never share a schema.
type Schema struct {
	name      string
	accessors map[string]Accessor
	aliases   map[string]string
	wire      []WireField
	priority  map[string]int
}

// NewSchema builds a schema from config. Maps are copied so later changes to
// config have no effect.
func NewSchema(name string, config SchemaConfig) *Schema {
	schema := &Schema{
		name:      name,
		accessors: make(map[string]Accessor, len(config.Accessors)),
		aliases:   make(map[string]string, len(config.Aliases)),
		wire:      append([]WireField(nil), config.Wire...),
		priority:  make(map[string]int, len(config.Priority)),
	}

	for field, accessor := range config.Accessors {
		schema.accessors[field] = accessor
	}

	for alias, field := range config.Aliases {
		schema.aliases[alias] = field
	}

	for index, field := range config.Priority {
		schema.priority[field] = index
	}

	return schema
}

// Name returns the entity type name.
func (s *Schema) Name() string {
	if s == nil {
		return "entity"
	}

	return s.name
}

// Resolve maps an alias to its canonical field name.
func (s *Schema) Resolve(name string) string {
	if s == nil {
		return name
	}

	if field, ok := s.aliases[name]; ok {
		return field
	}

	return name
}

// Accessor returns the accessor registered for field, if any.
func (s *Schema) Accessor(field string) (Accessor, bool) {
	if s == nil {
		return Accessor{}, false
	}

	accessor, ok := s.accessors[field]

	return accessor, ok
}

// WireFields returns the wire mapping in declaration order.
func (s *Schema) WireFields() []WireField {
	if s == nil {
		return nil
	}

	return s.wire
}

// wireField looks up the wire description of field.
func (s *Schema) wireField(field string) (WireField, bool) {
	for _, wire := range s.WireFields() {
		if wire.Name == field {
			return wire, true
		}
	}

	return WireField{}, false
}

// wireName maps a wire key back to its in-memory field name.
func (s *Schema) wireName(key string) string {
	for _, wire := range s.WireFields() {
		if wire.key() == key {
			return wire.Name
		}
	}

	return key
}

func (s *Schema) rank(field string) (int, bool) {
	if s == nil {
		return 0, false
	}

	rank, ok := s.priority[field]

	return rank, ok
}

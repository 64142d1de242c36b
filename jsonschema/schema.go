package jsonschema

// Schema is the subset of JSON Schema needed to describe the ValueTree
// accepted by a codec after Normalize.
type Schema struct {
	// Core
	Schema      string `json:"$schema,omitempty"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Type        any    `json:"type,omitempty"` // string or []string
	Format      string `json:"format,omitempty"`
	Const       any    `json:"const,omitempty"`
	Enum        []any  `json:"enum,omitempty"`

	// Number
	Minimum any `json:"minimum,omitempty"`
	Maximum any `json:"maximum,omitempty"`

	// String
	MaxLength *int `json:"maxLength,omitempty"`

	// Object
	Properties           map[string]*Schema `json:"properties,omitempty"`
	Required             []string           `json:"required,omitempty"`
	AdditionalProperties *bool              `json:"additionalProperties,omitempty"`

	// Array
	Items    *Schema `json:"items,omitempty"`
	MinItems *int    `json:"minItems,omitempty"`
	MaxItems *int    `json:"maxItems,omitempty"`

	// Union
	OneOf []*Schema `json:"oneOf,omitempty"`
}

// Draft is the dialect URI set on root schemas.
const Draft = "https://json-schema.org/draft/2020-12/schema"

// Object returns a closed object schema with no properties yet.
func Object() *Schema {
	closed := false
	return &Schema{Type: "object", Properties: map[string]*Schema{}, AdditionalProperties: &closed}
}

// Property adds a required property.
func (s *Schema) Property(name string, p *Schema) {
	s.Properties[name] = p
	s.Required = append(s.Required, name)
}

// Int returns a pointer to n, for the optional count fields.
func Int(n int) *int { return &n }

// SPDX-License-Identifier: Apache-2.0
// Package schema provides structural schemas for skill inputs and outputs,
// and a validator that reports conformance violations instead of raising.
package schema

// Type enumerates the supported schema value types.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Format constrains string values beyond their type.
type Format string

const (
	FormatUUID     Format = "uuid"
	FormatDateTime Format = "date-time"
	FormatURI      Format = "uri"
	FormatEmail    Format = "email"
)

// Schema describes the expected shape of a value. Skill input and output
// schemas always declare an object root; scalar and array roots are reserved
// for nested property schemas.
type Schema struct {
	Type        Type               `json:"type,omitempty" yaml:"type,omitempty"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty" yaml:"properties,omitempty"`
	Required    []string           `json:"required,omitempty" yaml:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty" yaml:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty" yaml:"enum,omitempty"`
	Format      Format             `json:"format,omitempty" yaml:"format,omitempty"`
	Minimum     *float64           `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64           `json:"maximum,omitempty" yaml:"maximum,omitempty"`

	// Closed forbids properties the schema does not declare.
	Closed bool `json:"closed,omitempty" yaml:"closed,omitempty"`
}

// NewObject creates an object schema.
func NewObject() *Schema {
	return &Schema{
		Type:       TypeObject,
		Properties: make(map[string]*Schema),
	}
}

// NewArray creates an array schema with the given item schema.
func NewArray(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// NewString creates a string schema.
func NewString() *Schema {
	return &Schema{Type: TypeString}
}

// NewNumber creates a number schema.
func NewNumber() *Schema {
	return &Schema{Type: TypeNumber}
}

// NewInteger creates an integer schema.
func NewInteger() *Schema {
	return &Schema{Type: TypeInteger}
}

// NewBoolean creates a boolean schema.
func NewBoolean() *Schema {
	return &Schema{Type: TypeBoolean}
}

// NewEnum creates a string schema restricted to the given values.
func NewEnum(values ...any) *Schema {
	return &Schema{Type: TypeString, Enum: values}
}

// Property adds a property to an object schema.
func (s *Schema) Property(name string, prop *Schema) *Schema {
	if s.Properties == nil {
		s.Properties = make(map[string]*Schema)
	}
	s.Properties[name] = prop
	return s
}

// Require marks property names as required.
func (s *Schema) Require(names ...string) *Schema {
	s.Required = append(s.Required, names...)
	return s
}

// WithFormat sets a string format constraint.
func (s *Schema) WithFormat(f Format) *Schema {
	s.Format = f
	return s
}

// WithDescription sets the schema description.
func (s *Schema) WithDescription(desc string) *Schema {
	s.Description = desc
	return s
}

// Bounds sets inclusive numeric bounds.
func (s *Schema) Bounds(min, max float64) *Schema {
	s.Minimum = &min
	s.Maximum = &max
	return s
}

// Min sets the inclusive lower bound.
func (s *Schema) Min(min float64) *Schema {
	s.Minimum = &min
	return s
}

// Close marks the object schema closed: undeclared properties are violations.
func (s *Schema) Close() *Schema {
	s.Closed = true
	return s
}

// HasProperty reports whether an object schema declares the named property.
func (s *Schema) HasProperty(name string) bool {
	if s == nil || s.Properties == nil {
		return false
	}
	_, ok := s.Properties[name]
	return ok
}

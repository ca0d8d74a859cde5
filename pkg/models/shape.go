package models

import "sort"

// Shape type names. They match JSON Schema primitive types.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
)

// Shape is a declarative description of a value's structure, bounds and
// enumerations. It serialises as a JSON Schema document and is used both to
// gate flow input and to validate generated output.
type Shape struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]*Shape `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
	Enum        []any             `json:"enum,omitempty"`
	MinLength   *int              `json:"minLength,omitempty"`
	MaxLength   *int              `json:"maxLength,omitempty"`
	Minimum     *float64          `json:"minimum,omitempty"`
	Maximum     *float64          `json:"maximum,omitempty"`
	MinItems    *int              `json:"minItems,omitempty"`
	MaxItems    *int              `json:"maxItems,omitempty"`
	UniqueItems bool              `json:"uniqueItems,omitempty"`
	Items       *Shape            `json:"items,omitempty"`
	Pattern     string            `json:"pattern,omitempty"`

	// order keeps property declaration order for prompt and schema rendering.
	order []string
}

// Field is one property of an object shape.
type Field struct {
	Name     string
	Shape    *Shape
	Required bool
}

// Req declares a required object property.
func Req(name string, shape *Shape) Field {
	return Field{Name: name, Shape: shape, Required: true}
}

// Opt declares an optional object property.
func Opt(name string, shape *Shape) Field {
	return Field{Name: name, Shape: shape}
}

// Object builds an object shape from its fields, in declaration order.
func Object(fields ...Field) *Shape {
	s := &Shape{Type: TypeObject, Properties: make(map[string]*Shape, len(fields))}

	for _, f := range fields {
		s.Properties[f.Name] = f.Shape
		s.order = append(s.order, f.Name)

		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}

	return s
}

func String() *Shape {
	return &Shape{Type: TypeString}
}

func Integer() *Shape {
	return &Shape{Type: TypeInteger}
}

func Number() *Shape {
	return &Shape{Type: TypeNumber}
}

func Boolean() *Shape {
	return &Shape{Type: TypeBoolean}
}

// Array builds an array shape whose elements match items.
func Array(items *Shape) *Shape {
	return &Shape{Type: TypeArray, Items: items}
}

// Enum builds a closed string enumeration.
func Enum(values ...string) *Shape {
	s := &Shape{Type: TypeString, Enum: make([]any, 0, len(values))}
	for _, v := range values {
		s.Enum = append(s.Enum, v)
	}

	return s
}

// Len bounds string length in characters.
func (s *Shape) Len(minLen, maxLen int) *Shape {
	s.MinLength = &minLen
	s.MaxLength = &maxLen

	return s
}

// MaxLen bounds string length from above only.
func (s *Shape) MaxLen(maxLen int) *Shape {
	s.MaxLength = &maxLen

	return s
}

// Range bounds a numeric value, inclusive.
func (s *Shape) Range(minValue, maxValue float64) *Shape {
	s.Minimum = &minValue
	s.Maximum = &maxValue

	return s
}

// Count bounds array cardinality, inclusive.
func (s *Shape) Count(minItems, maxItems int) *Shape {
	s.MinItems = &minItems
	s.MaxItems = &maxItems

	return s
}

// Unique requires array elements to be distinct.
func (s *Shape) Unique() *Shape {
	s.UniqueItems = true

	return s
}

// Describe attaches a description used in schema-guided requests.
func (s *Shape) Describe(description string) *Shape {
	s.Description = description

	return s
}

// Match constrains a string with a regular expression.
func (s *Shape) Match(pattern string) *Shape {
	s.Pattern = pattern

	return s
}

// PropertyNames returns object property names in declaration order.
func (s *Shape) PropertyNames() []string {
	if len(s.order) == len(s.Properties) {
		return s.order
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// IsRequired reports whether the named property is required.
func (s *Shape) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}

	return false
}

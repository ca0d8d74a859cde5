package gemini

import (
	"fmt"

	"github.com/museloop/genflow/pkg/models"
	"google.golang.org/genai"
)

// Schema converts a Shape into the response schema understood by Gemini.
// Uniqueness is not expressible there and is left to output validation.
func Schema(s *models.Shape) *genai.Schema {
	if s == nil {
		return nil
	}

	schema := &genai.Schema{
		Type:        schemaType(s.Type),
		Description: s.Description,
		Pattern:     s.Pattern,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
		MinLength:   int64Ptr(s.MinLength),
		MaxLength:   int64Ptr(s.MaxLength),
		MinItems:    int64Ptr(s.MinItems),
		MaxItems:    int64Ptr(s.MaxItems),
	}

	for _, value := range s.Enum {
		schema.Enum = append(schema.Enum, fmt.Sprint(value))
	}

	if s.Items != nil {
		schema.Items = Schema(s.Items)
	}

	if s.Type == models.TypeObject {
		names := s.PropertyNames()
		schema.Properties = make(map[string]*genai.Schema, len(names))
		schema.PropertyOrdering = append([]string(nil), names...)

		for _, name := range names {
			schema.Properties[name] = Schema(s.Properties[name])
		}

		schema.Required = append([]string(nil), s.Required...)
	}

	return schema
}

func schemaType(t string) genai.Type {
	switch t {
	case models.TypeObject:
		return genai.TypeObject
	case models.TypeArray:
		return genai.TypeArray
	case models.TypeInteger:
		return genai.TypeInteger
	case models.TypeNumber:
		return genai.TypeNumber
	case models.TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}

	n := int64(*v)

	return &n
}

// Package shape validates values against declarative shapes and coerces
// backend responses into shape-conformant documents.
package shape

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/museloop/genflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

const rootField = "(root)"

// ErrNoShape indicates a nil shape was passed for validation.
var ErrNoShape = errors.New("shape is nil")

// Validate checks a Go value against a shape. The value is marshalled with
// encoding/json, so struct tags decide field names and omitempty decides absence.
// A nil violation slice means the value conforms.
func Validate(s *models.Shape, value any) ([]models.Violation, error) {
	if s == nil {
		return nil, ErrNoShape
	}

	return validate(s, gojsonschema.NewGoLoader(value))
}

// ValidateJSON checks a raw JSON document against a shape.
func ValidateJSON(s *models.Shape, data []byte) ([]models.Violation, error) {
	if s == nil {
		return nil, ErrNoShape
	}

	return validate(s, gojsonschema.NewBytesLoader(data))
}

func validate(s *models.Shape, doc gojsonschema.JSONLoader) ([]models.Violation, error) {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(s), doc)
	if err != nil {
		return nil, fmt.Errorf("validate shape: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	return toViolations(result.Errors()), nil
}

func toViolations(errs []gojsonschema.ResultError) []models.Violation {
	violations := make([]models.Violation, 0, len(errs))

	for _, e := range errs {
		field := e.Field()

		if e.Type() == "required" {
			if property, ok := e.Details()["property"].(string); ok {
				if field == rootField || field == "" {
					field = property
				} else {
					field = field + "." + property
				}
			}
		}

		violations = append(violations, models.Violation{
			Field:   field,
			Rule:    e.Type(),
			Message: e.Description(),
		})
	}

	sort.SliceStable(violations, func(i, j int) bool {
		if violations[i].Field != violations[j].Field {
			return violations[i].Field < violations[j].Field
		}

		return violations[i].Rule < violations[j].Rule
	})

	return violations
}

// Summary joins violations into one line for logs.
func Summary(violations []models.Violation) string {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, v.String())
	}

	return strings.Join(parts, "; ")
}

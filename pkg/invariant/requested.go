package invariant

import (
	"fmt"

	"github.com/museloop/genflow/pkg/models"
)

// OptionalField is an optional output field whose presence depends on what
// the caller asked for.
type OptionalField[In, Out any] struct {
	Name      string
	Requested func(in In) bool
	Present   func(out *Out) bool
	Clear     func(out *Out)
}

// Optional describes an optional output field whose zero value means absent.
func Optional[In, Out any, V comparable](name string, requested func(In) bool, field func(*Out) *V) OptionalField[In, Out] {
	return OptionalField[In, Out]{
		Name:      name,
		Requested: requested,
		Present: func(out *Out) bool {
			var zero V

			return *field(out) != zero
		},
		Clear: func(out *Out) {
			var zero V

			*field(out) = zero
		},
	}
}

// Requested applies one rule to optional output fields. A field the caller did
// not request is cleared, so it is absent because it was not asked for. A
// requested field that is missing fails with IncompleteOutput, because the
// generation did not deliver it.
func Requested[In, Out any](fields ...OptionalField[In, Out]) Check[In, Out] {
	return func(in In, out *Out) error {
		var violations []models.Violation

		for _, f := range fields {
			if !f.Requested(in) {
				f.Clear(out)

				continue
			}

			if !f.Present(out) {
				violations = append(violations, models.Violation{
					Field:   f.Name,
					Rule:    "requested",
					Message: fmt.Sprintf("%s was requested but not generated", f.Name),
				})
			}
		}

		if len(violations) > 0 {
			return models.NewIncompleteOutput("requested output is missing", violations)
		}

		return nil
	}
}

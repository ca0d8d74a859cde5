// Package invariant holds business rules applied to shape-valid flow output.
package invariant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/museloop/genflow/pkg/models"
)

// Check inspects, and may adjust, a flow output. A non-nil error must be a
// *models.FlowError.
type Check[In, Out any] func(in In, out *Out) error

// Run applies checks in order and stops at the first failure.
func Run[In, Out any](checks []Check[In, Out], in In, out *Out) error {
	for _, check := range checks {
		if err := check(in, out); err != nil {
			return err
		}
	}

	return nil
}

// RequiredSections requires the distinct labels found in the output to equal
// the required set exactly. Order and repetition are not checked.
func RequiredSections[In, Out any](field string, labels func(*Out) []string, required ...string) Check[In, Out] {
	want := make(map[string]struct{}, len(required))
	for _, r := range required {
		want[r] = struct{}{}
	}

	return func(_ In, out *Out) error {
		present := make(map[string]struct{})
		for _, label := range labels(out) {
			present[label] = struct{}{}
		}

		var violations []models.Violation

		for _, r := range sortedKeys(want) {
			if _, ok := present[r]; !ok {
				violations = append(violations, models.Violation{
					Field:   field,
					Rule:    "required_section",
					Message: fmt.Sprintf("section %q is missing", r),
				})
			}
		}

		for _, p := range sortedKeys(present) {
			if _, ok := want[p]; !ok {
				violations = append(violations, models.Violation{
					Field:   field,
					Rule:    "unexpected_section",
					Message: fmt.Sprintf("section %q is not allowed", p),
				})
			}
		}

		if len(violations) > 0 {
			return models.NewIncompleteOutput(
				fmt.Sprintf("%s must contain exactly the sections %s", field, strings.Join(required, ", ")),
				violations,
			)
		}

		return nil
	}
}

// NonEmptyText fails with GenerationFailed when the primary text payload is blank.
func NonEmptyText[In, Out any](field string, get func(*Out) string) Check[In, Out] {
	return func(_ In, out *Out) error {
		if strings.TrimSpace(get(out)) == "" {
			return emptyPayload(field)
		}

		return nil
	}
}

// NonEmptyMedia fails with GenerationFailed when no media part carries content.
func NonEmptyMedia[In, Out any](field string, get func(*Out) []models.MediaPart) Check[In, Out] {
	return func(_ In, out *Out) error {
		for _, part := range get(out) {
			if part.Inline() || part.URI != "" {
				return nil
			}
		}

		return emptyPayload(field)
	}
}

// NonEmpty fails with GenerationFailed when the primary list payload is empty.
func NonEmpty[In, Out, E any](field string, get func(*Out) []E) Check[In, Out] {
	return func(_ In, out *Out) error {
		if len(get(out)) == 0 {
			return emptyPayload(field)
		}

		return nil
	}
}

// Pin copies caller-supplied values over the backend's copy.
func Pin[In, Out any](apply func(in In, out *Out)) Check[In, Out] {
	return func(in In, out *Out) error {
		apply(in, out)

		return nil
	}
}

func emptyPayload(field string) error {
	return models.NewGenerationFailed(
		models.ReasonEmptyPayload,
		fmt.Sprintf("primary payload %q is empty", field),
		nil,
	)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

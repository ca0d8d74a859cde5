package template

// Predicate decides whether a conditional section is rendered. Predicates
// must be pure functions of the input.
type Predicate[In any] func(in In) bool

// Has holds when the selected value differs from its zero value.
func Has[In any, V comparable](get func(In) V) Predicate[In] {
	return func(in In) bool {
		var zero V

		return get(in) != zero
	}
}

// HasItems holds when the selected list is non-empty.
func HasItems[In, E any](get func(In) []E) Predicate[In] {
	return func(in In) bool {
		return len(get(in)) > 0
	}
}

// Contains holds when the selected list contains want.
func Contains[In any, E comparable](get func(In) []E, want E) Predicate[In] {
	return func(in In) bool {
		for _, v := range get(in) {
			if v == want {
				return true
			}
		}

		return false
	}
}

// Positive holds when the selected number is greater than zero.
func Positive[In any](get func(In) int) Predicate[In] {
	return func(in In) bool {
		return get(in) > 0
	}
}

func Not[In any](p Predicate[In]) Predicate[In] {
	return func(in In) bool {
		return !p(in)
	}
}

// All holds when every predicate holds.
func All[In any](preds ...Predicate[In]) Predicate[In] {
	return func(in In) bool {
		for _, p := range preds {
			if !p(in) {
				return false
			}
		}

		return true
	}
}

// AnyOf holds when at least one predicate holds.
func AnyOf[In any](preds ...Predicate[In]) Predicate[In] {
	return func(in In) bool {
		for _, p := range preds {
			if p(in) {
				return true
			}
		}

		return false
	}
}

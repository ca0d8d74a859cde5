package template

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// funcMap holds the functions available to section bodies. None of them read
// the clock, the environment or a random source.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"join": func(sep string, items any) string {
			return strings.Join(toStrings(items), sep)
		},
		"json": func(v any) (string, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return "", err
			}

			return string(data), nil
		},
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
		"trim":  strings.TrimSpace,
		"default": func(fallback, v any) any {
			if isZero(v) {
				return fallback
			}

			return v
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}

func toStrings(items any) []string {
	switch v := items.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}

		return out
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(v)}
	}
}

func isZero(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case int:
		return t == 0
	case *int:
		return t == nil
	case *string:
		return t == nil || *t == ""
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

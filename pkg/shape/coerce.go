package shape

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/museloop/genflow/pkg/models"
	"github.com/tidwall/gjson"
)

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// mediaEnvelope is the document freeform responses are validated as.
type mediaEnvelope struct {
	Text  string             `json:"text,omitempty"`
	Media []models.MediaPart `json:"media"`
}

// Coerce turns a backend response into a JSON document that conforms to the
// output shape. Structured responses use the decoded payload or, failing that,
// the JSON found in the response text. Freeform responses become an envelope
// of the form {"text": ..., "media": [...]}.
//
// Numeric and boolean strings are converted where the shape declares a number,
// integer or boolean, and null optional properties are dropped. Nothing is
// defaulted. Any failure is a *models.FlowError of kind InvalidOutput.
func Coerce(s *models.Shape, structured bool, resp *models.GenerationResponse) (json.RawMessage, error) {
	if s == nil {
		return nil, models.NewInvalidOutput("flow declares no output shape", nil, ErrNoShape)
	}

	var doc any

	if structured {
		raw := []byte(resp.Data)
		if len(raw) == 0 {
			raw = extractJSON(resp.Text)
		}

		if len(raw) == 0 {
			return nil, models.NewInvalidOutput("response carries no JSON document", []models.Violation{{
				Field:   rootField,
				Rule:    "json",
				Message: "no JSON document found in response",
			}}, nil)
		}

		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, models.NewInvalidOutput("response is not valid JSON", []models.Violation{{
				Field:   rootField,
				Rule:    "json",
				Message: err.Error(),
			}}, err)
		}
	} else {
		envelope := mediaEnvelope{Text: strings.TrimSpace(resp.Text), Media: resp.Media}
		if envelope.Media == nil {
			envelope.Media = []models.MediaPart{}
		}

		data, err := json.Marshal(envelope)
		if err != nil {
			return nil, models.NewInvalidOutput("encode media envelope", nil, err)
		}

		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, models.NewInvalidOutput("decode media envelope", nil, err)
		}
	}

	doc = coerceValue(s, doc)

	violations, err := Validate(s, doc)
	if err != nil {
		return nil, models.NewInvalidOutput("output shape check failed", nil, err)
	}

	if len(violations) > 0 {
		return nil, models.NewInvalidOutput("response does not match the flow output shape", violations, nil)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, models.NewInvalidOutput("encode output", nil, err)
	}

	return out, nil
}

// Decode unmarshals a coerced document into the flow's output type. Types with
// custom decoders (tagged unions) report their errors as InvalidOutput.
func Decode[Out any](data json.RawMessage) (*Out, error) {
	out := new(Out)

	if err := json.Unmarshal(data, out); err != nil {
		return nil, models.NewInvalidOutput("response does not decode into the flow output", []models.Violation{{
			Field:   rootField,
			Rule:    "decode",
			Message: err.Error(),
		}}, err)
	}

	return out, nil
}

func extractJSON(text string) []byte {
	candidate := strings.TrimSpace(text)
	if candidate == "" {
		return nil
	}

	if m := fencedBlock.FindStringSubmatch(candidate); m != nil {
		candidate = strings.TrimSpace(m[1])
	}

	if gjson.Valid(candidate) {
		return []byte(candidate)
	}

	start := strings.IndexAny(candidate, "{[")
	end := strings.LastIndexAny(candidate, "}]")

	if start >= 0 && end > start {
		inner := candidate[start : end+1]
		if gjson.Valid(inner) {
			return []byte(inner)
		}
	}

	return nil
}

func coerceValue(s *models.Shape, v any) any {
	if s == nil {
		return v
	}

	switch s.Type {
	case models.TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return v
		}

		for name, prop := range s.Properties {
			pv, present := obj[name]
			if !present {
				continue
			}

			if pv == nil && !s.IsRequired(name) {
				delete(obj, name)

				continue
			}

			obj[name] = coerceValue(prop, pv)
		}

		return obj
	case models.TypeArray:
		arr, ok := v.([]any)
		if !ok {
			return v
		}

		for i := range arr {
			arr[i] = coerceValue(s.Items, arr[i])
		}

		return arr
	case models.TypeInteger, models.TypeNumber:
		if str, ok := v.(string); ok {
			if f, err := strconv.ParseFloat(strings.TrimSpace(str), 64); err == nil {
				return f
			}
		}
	case models.TypeBoolean:
		if str, ok := v.(string); ok {
			if b, err := strconv.ParseBool(strings.TrimSpace(str)); err == nil {
				return b
			}
		}
	}

	return v
}

// MediaEnvelope is the output shape of freeform flows. Text is optional and
// media may be empty; flows that need media enforce that as an invariant.
func MediaEnvelope() *models.Shape {
	return models.Object(
		models.Opt("text", models.String()),
		models.Req("media", models.Array(models.Object(
			models.Req("mimeType", models.String()),
			models.Opt("data", models.String()),
			models.Opt("uri", models.String()),
		))),
	)
}

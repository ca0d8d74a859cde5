// Package template renders flow prompts from typed input.
//
// A Template is an ordered list of sections. Each section is a text/template
// body, optionally gated by a Predicate or repeated over a list taken from the
// input. Rendering uses a pure function map, so the same input always yields
// the same prompt.
package template

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/museloop/genflow/pkg/models"
)

// sectionSeparator separates rendered sections in the final prompt.
const sectionSeparator = "\n\n"

// Template is an immutable prompt template over the input type In.
type Template[In any] struct {
	name     string
	sections []Section[In]
}

// Section is one block of a prompt.
type Section[In any] struct {
	name   string
	render func(in In, st *state) (string, error)
}

// Name returns the section name used in error messages.
func (s Section[In]) Name() string {
	return s.name
}

type state struct {
	media []models.MediaPart
}

// New builds a template from ordered sections.
func New[In any](name string, sections ...Section[In]) *Template[In] {
	return &Template[In]{name: name, sections: sections}
}

// Name returns the template name.
func (t *Template[In]) Name() string {
	return t.name
}

// Render expands every section against the input. Empty sections are dropped
// and the rest are joined by a blank line.
func (t *Template[In]) Render(in In) (*models.RenderedPrompt, error) {
	st := &state{}

	text, err := renderAll(t.sections, in, st)
	if err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", t.name, err)
	}

	return &models.RenderedPrompt{Text: text, Media: st.media}, nil
}

func renderAll[In any](sections []Section[In], in In, st *state) (string, error) {
	blocks := make([]string, 0, len(sections))

	for _, s := range sections {
		out, err := s.render(in, st)
		if err != nil {
			return "", fmt.Errorf("section '%s': %w", s.name, err)
		}

		out = strings.TrimSpace(out)
		if out != "" {
			blocks = append(blocks, out)
		}
	}

	return strings.Join(blocks, sectionSeparator), nil
}

// Text is a section whose body is interpolated against the input.
func Text[In any](name, body string) Section[In] {
	tmpl := parse(name, body)

	return Section[In]{
		name: name,
		render: func(in In, _ *state) (string, error) {
			return execute(tmpl, in)
		},
	}
}

// When renders the nested sections only if the predicate holds.
func When[In any](pred Predicate[In], sections ...Section[In]) Section[In] {
	return Section[In]{
		name: "when",
		render: func(in In, st *state) (string, error) {
			if !pred(in) {
				return "", nil
			}

			return renderAll(sections, in, st)
		},
	}
}

// EachItem is the data an Each body is executed with.
type EachItem[In, Item any] struct {
	Item   Item
	Index  int
	Number int
	Input  In
}

// Each renders body once per element of items, in input order, one line per element.
func Each[In, Item any](name string, items func(In) []Item, body string) Section[In] {
	tmpl := parse(name, body)

	return Section[In]{
		name: name,
		render: func(in In, _ *state) (string, error) {
			list := items(in)
			lines := make([]string, 0, len(list))

			for i, item := range list {
				out, err := execute(tmpl, EachItem[In, Item]{Item: item, Index: i, Number: i + 1, Input: in})
				if err != nil {
					return "", err
				}

				if out = strings.TrimSpace(out); out != "" {
					lines = append(lines, out)
				}
			}

			return strings.Join(lines, "\n"), nil
		},
	}
}

// Cases renders one block per selected key, in the order the input lists
// them. Keys without a case body are skipped.
func Cases[In any](name string, keys func(In) []string, cases map[string]string) Section[In] {
	parsed := make(map[string]*template.Template, len(cases))
	for key, body := range cases {
		parsed[key] = parse(name+"."+key, body)
	}

	return Section[In]{
		name: name,
		render: func(in In, _ *state) (string, error) {
			var blocks []string

			for _, key := range keys(in) {
				tmpl, ok := parsed[key]
				if !ok {
					continue
				}

				out, err := execute(tmpl, in)
				if err != nil {
					return "", err
				}

				if out = strings.TrimSpace(out); out != "" {
					blocks = append(blocks, out)
				}
			}

			return strings.Join(blocks, sectionSeparator), nil
		},
	}
}

// Media attaches the media referenced by the input to the prompt and emits a
// marker line per part so the text can refer to it.
func Media[In any](name string, uris func(In) []string) Section[In] {
	return Section[In]{
		name: name,
		render: func(in In, st *state) (string, error) {
			var markers []string

			for _, uri := range uris(in) {
				part, err := ParseMediaURI(uri)
				if err != nil {
					return "", err
				}

				st.media = append(st.media, part)
				markers = append(markers, fmt.Sprintf("[media %d: %s]", len(st.media), part.MIMEType))
			}

			return strings.Join(markers, "\n"), nil
		},
	}
}

func parse(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(funcMap()).Option("missingkey=error").Parse(body))
}

func execute(tmpl *template.Template, data any) (string, error) {
	var buf strings.Builder

	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", tmpl.Name(), err)
	}

	return buf.String(), nil
}

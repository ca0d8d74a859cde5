// Package flow runs the generation pipeline for registered flow definitions.
package flow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

var ErrInvalidDefinition = errors.New("invalid flow definition")

// Definition configures one flow: its contracts, prompt template, invariants
// and the modalities it asks the backend for. Definitions are built once and
// never modified.
type Definition[In, Out any] struct {
	Name        string
	Description string
	// System is a static system instruction sent with every request.
	System     string
	Input      *models.Shape
	Output     *models.Shape
	Template   *template.Template[In]
	Invariants []invariant.Check[In, Out]
	// Modalities defaults to text only. Flows asking for media are freeform
	// and their Output describes the media envelope.
	Modalities []models.Modality
}

// Validate reports configuration mistakes.
func (d *Definition[In, Out]) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	case d.Input == nil:
		return fmt.Errorf("%w: %s has no input shape", ErrInvalidDefinition, d.Name)
	case d.Output == nil:
		return fmt.Errorf("%w: %s has no output shape", ErrInvalidDefinition, d.Name)
	case d.Template == nil:
		return fmt.Errorf("%w: %s has no template", ErrInvalidDefinition, d.Name)
	}

	return nil
}

// Structured reports whether requests are schema guided.
func (d *Definition[In, Out]) Structured() bool {
	return !slices.ContainsFunc(d.modalities(), func(m models.Modality) bool {
		return m != models.ModalityText
	})
}

// Describe returns the public descriptor of the flow.
func (d *Definition[In, Out]) Describe() models.FlowDescriptor {
	return models.FlowDescriptor{
		Name:        d.Name,
		Description: d.Description,
		Modalities:  d.modalities(),
		Input:       d.Input,
		Output:      d.Output,
	}
}

func (d *Definition[In, Out]) modalities() []models.Modality {
	if len(d.Modalities) == 0 {
		return []models.Modality{models.ModalityText}
	}

	return d.Modalities
}

func (d *Definition[In, Out]) request(prompt *models.RenderedPrompt) *models.GenerationRequest {
	req := &models.GenerationRequest{
		Flow:              d.Name,
		Prompt:            prompt.Text,
		SystemInstruction: d.System,
		Media:             prompt.Media,
		Modalities:        d.modalities(),
	}

	if d.Structured() {
		req.OutputShape = d.Output
	}

	return req
}

// Package models defines the data types shared by the generative request pipeline.
package models

import (
	"encoding/json"
)

// Modality is a kind of content a flow asks the backend to produce.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
)

// MediaPart is non-text content, either inline bytes or a URI reference.
type MediaPart struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data,omitempty"`
	URI      string `json:"uri,omitempty"`
}

// Inline reports whether the part carries its bytes.
func (m MediaPart) Inline() bool {
	return len(m.Data) > 0
}

// RenderedPrompt is the output of the prompt renderer.
type RenderedPrompt struct {
	Text  string      `json:"text"`
	Media []MediaPart `json:"media,omitempty"`
}

// GenerationRequest is one call to the generation backend.
type GenerationRequest struct {
	Flow              string      `json:"flow"`
	Prompt            string      `json:"prompt"`
	SystemInstruction string      `json:"system_instruction,omitempty"`
	Media             []MediaPart `json:"media,omitempty"`
	Modalities        []Modality  `json:"modalities"`
	// OutputShape is set for schema-guided requests and nil for freeform ones.
	OutputShape *Shape `json:"output_shape,omitempty"`
}

// Structured reports whether the backend should return data conforming to OutputShape.
func (r *GenerationRequest) Structured() bool {
	return r.OutputShape != nil
}

// WantsMedia reports whether the request asks for generated media.
func (r *GenerationRequest) WantsMedia() bool {
	for _, m := range r.Modalities {
		if m != ModalityText {
			return true
		}
	}

	return false
}

// GenerationResponse is the complete backend answer. Partial content is never exposed.
type GenerationResponse struct {
	Data         json.RawMessage `json:"data,omitempty"`
	Text         string          `json:"text,omitempty"`
	Media        []MediaPart     `json:"media,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// Empty reports whether the response carries no content at all.
func (r *GenerationResponse) Empty() bool {
	return r == nil || (len(r.Data) == 0 && r.Text == "" && len(r.Media) == 0)
}

package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowError_MatchesKindSentinel(t *testing.T) {
	tests := []struct {
		name     string
		err      *FlowError
		sentinel error
	}{
		{"invalid input", NewInvalidInput(nil), ErrInvalidInput},
		{"generation failed", NewGenerationFailed(ReasonQuota, "quota exhausted", nil), ErrGenerationFailed},
		{"content filtered", NewContentFiltered("blocked", nil), ErrContentFiltered},
		{"invalid output", NewInvalidOutput("bad json", nil, nil), ErrInvalidOutput},
		{"incomplete output", NewIncompleteOutput("missing section", nil), ErrIncompleteOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("invoke: %w", tt.err)

			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.err.Kind, KindOf(wrapped))

			for _, other := range kindSentinels {
				if other != tt.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewGenerationFailed(ReasonTimeout, "", nil)))
	assert.False(t, IsRetryable(NewContentFiltered("blocked", nil)))
	assert.False(t, IsRetryable(NewInvalidInput(nil)))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
}

func TestFlowError_Message(t *testing.T) {
	err := NewInvalidInput([]Violation{{Field: "name", Rule: "required", Message: "name is required"}})
	err.Flow = "creator-bio"

	assert.Equal(t,
		"creator-bio: invalid_input: input does not match the flow input shape [name: name is required]",
		err.Error())

	cause := errors.New("connection reset")
	failed := NewGenerationFailed(ReasonBackend, "", cause)

	assert.Equal(t, "generation_failed (backend_error): connection reset", failed.Error())
	assert.ErrorIs(t, failed, cause)
}

func TestObject_KeepsDeclarationOrder(t *testing.T) {
	s := Object(
		Req("title", String()),
		Opt("mood", String()),
		Req("sections", Array(String()).Count(1, 8)),
	)

	assert.Equal(t, []string{"title", "mood", "sections"}, s.PropertyNames())
	assert.Equal(t, []string{"title", "sections"}, s.Required)
	assert.True(t, s.IsRequired("sections"))
	assert.False(t, s.IsRequired("mood"))
}

func TestGenerationRequest(t *testing.T) {
	req := &GenerationRequest{Modalities: []Modality{ModalityText}}
	assert.False(t, req.Structured())
	assert.False(t, req.WantsMedia())

	req = &GenerationRequest{Modalities: []Modality{ModalityText, ModalityImage}, OutputShape: Object()}
	assert.True(t, req.Structured())
	assert.True(t, req.WantsMedia())
}

func TestGenerationResponse_Empty(t *testing.T) {
	var nilResponse *GenerationResponse

	assert.True(t, nilResponse.Empty())
	assert.True(t, (&GenerationResponse{}).Empty())
	assert.False(t, (&GenerationResponse{Text: "hi"}).Empty())
	assert.False(t, (&GenerationResponse{Media: []MediaPart{{MIMEType: "image/png", Data: []byte{1}}}}).Empty())
}

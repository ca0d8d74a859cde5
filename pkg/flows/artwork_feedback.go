package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

const imageURIPattern = `^(data:image/[a-zA-Z0-9.+-]+;base64,|https?://|gs://)`

var focusAreas = []string{"composition", "color", "technique", "originality", "emotion"}

type ArtworkFeedbackInput struct {
	ImageURI   string   `json:"imageUri"`
	Medium     string   `json:"medium"`
	FocusAreas []string `json:"focusAreas,omitempty"`
}

type ArtworkFeedbackOutput struct {
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Summary      string   `json:"summary"`
}

// ArtworkFeedback critiques an uploaded image of an artwork.
func ArtworkFeedback() *flow.Definition[ArtworkFeedbackInput, ArtworkFeedbackOutput] {
	return &flow.Definition[ArtworkFeedbackInput, ArtworkFeedbackOutput]{
		Name:        ArtworkFeedbackName,
		Description: "Gives structured feedback on an image of an artwork.",
		System:      system("You are an art teacher giving kind but honest feedback."),
		Input: models.Object(
			models.Req("imageUri", models.String().Match(imageURIPattern)),
			models.Req("medium", models.String().Len(2, 80)),
			models.Opt("focusAreas", models.Array(models.Enum(focusAreas...)).Count(0, 5).Unique()),
		),
		Output: models.Object(
			models.Req("strengths", models.Array(models.String().Len(1, 400)).Count(1, 5)),
			models.Req("improvements", models.Array(models.String().Len(1, 400)).Count(1, 5)),
			models.Req("summary", models.String().MaxLen(800)),
		),
		Template: template.New(ArtworkFeedbackName,
			template.Media("artwork", func(in ArtworkFeedbackInput) []string { return []string{in.ImageURI} }),
			template.Text[ArtworkFeedbackInput]("ask", "Give feedback on the attached {{ .Medium }} artwork."),
			template.When(template.HasItems(func(in ArtworkFeedbackInput) []string { return in.FocusAreas }),
				template.Text[ArtworkFeedbackInput]("focus", "Concentrate on: {{ join \", \" .FocusAreas }}."),
			),
		),
		Invariants: []invariant.Check[ArtworkFeedbackInput, ArtworkFeedbackOutput]{
			invariant.NonEmptyText[ArtworkFeedbackInput]("summary", func(out *ArtworkFeedbackOutput) string {
				return out.Summary
			}),
		},
	}
}

package flows

import (
	"strings"

	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/shape"
	"github.com/museloop/genflow/pkg/template"
)

var (
	artStyles    = []string{"photographic", "illustration", "abstract", "pixel_art", "watercolor", "minimalist"}
	aspectRatios = []string{"1:1", "3:4", "4:3", "16:9", "9:16"}
)

type CoverArtInput struct {
	Prompt      string `json:"prompt"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspectRatio"`
}

type CoverArtOutput struct {
	Text  string             `json:"text,omitempty"`
	Media []models.MediaPart `json:"media"`
}

// Images returns the generated parts that are images.
func (out *CoverArtOutput) Images() []models.MediaPart {
	var images []models.MediaPart

	for _, part := range out.Media {
		if strings.HasPrefix(part.MIMEType, "image/") {
			images = append(images, part)
		}
	}

	return images
}

// CoverArt generates cover artwork for a release or a post.
func CoverArt() *flow.Definition[CoverArtInput, CoverArtOutput] {
	return &flow.Definition[CoverArtInput, CoverArtOutput]{
		Name:        CoverArtName,
		Description: "Generates a cover image from a description.",
		Input: models.Object(
			models.Req("prompt", models.String().Len(10, 1000)),
			models.Req("style", models.Enum(artStyles...)),
			models.Req("aspectRatio", models.Enum(aspectRatios...)),
		),
		Output: shape.MediaEnvelope(),
		Template: template.New(CoverArtName,
			template.Text[CoverArtInput]("image",
				"Generate a {{ .Style }} cover image with a {{ .AspectRatio }} aspect ratio.\n"+
					"Subject: {{ .Prompt }}\nDo not render any text or logos in the image."),
		),
		Modalities: []models.Modality{models.ModalityText, models.ModalityImage},
		Invariants: []invariant.Check[CoverArtInput, CoverArtOutput]{
			invariant.NonEmptyMedia[CoverArtInput]("media", (*CoverArtOutput).Images),
		},
	}
}

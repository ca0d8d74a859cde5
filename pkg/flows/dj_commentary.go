package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

var djPersonas = []string{"chill", "hype", "storyteller", "critic"}

type DJCommentaryInput struct {
	TrackTitle    string `json:"trackTitle"`
	Artist        string `json:"artist"`
	Persona       string `json:"persona"`
	PreviousTrack string `json:"previousTrack,omitempty"`
	ListenerCount *int   `json:"listenerCount,omitempty"`
}

// Listeners returns the listener count, zero when unknown.
func (in DJCommentaryInput) Listeners() int {
	if in.ListenerCount == nil {
		return 0
	}

	return *in.ListenerCount
}

type DJCommentaryOutput struct {
	Commentary string `json:"commentary"`
}

// DJCommentary writes the radio host line played between tracks.
func DJCommentary() *flow.Definition[DJCommentaryInput, DJCommentaryOutput] {
	return &flow.Definition[DJCommentaryInput, DJCommentaryOutput]{
		Name:        DJCommentaryName,
		Description: "Writes a short radio host introduction for the next track.",
		System:      system("You are the host of the community radio. Keep every line under 60 words."),
		Input: models.Object(
			models.Req("trackTitle", models.String().Len(1, 200)),
			models.Req("artist", models.String().Len(1, 200)),
			models.Req("persona", models.Enum(djPersonas...)),
			models.Opt("previousTrack", models.String().Len(1, 200)),
			models.Opt("listenerCount", models.Integer().Range(0, 1_000_000_000)),
		),
		Output: models.Object(
			models.Req("commentary", models.String().MaxLen(600)),
		),
		Template: template.New(DJCommentaryName,
			template.Text[DJCommentaryInput]("intro",
				"As a {{ .Persona }} DJ, introduce \"{{ .TrackTitle }}\" by {{ .Artist }}."),
			template.When(template.Has(func(in DJCommentaryInput) string { return in.PreviousTrack }),
				template.Text[DJCommentaryInput]("segue", "Segue from the previous track, \"{{ .PreviousTrack }}\"."),
			),
			template.When(template.Positive(DJCommentaryInput.Listeners),
				template.Text[DJCommentaryInput]("audience", "Greet the {{ .Listeners }} people listening right now."),
			),
		),
		Invariants: []invariant.Check[DJCommentaryInput, DJCommentaryOutput]{
			invariant.NonEmptyText[DJCommentaryInput]("commentary", func(out *DJCommentaryOutput) string {
				return out.Commentary
			}),
		},
	}
}

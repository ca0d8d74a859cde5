package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

var (
	lyricGenres   = []string{"pop", "hip_hop", "rock", "folk", "electronic", "rnb", "country", "jazz"}
	lyricSections = []string{"intro", "verse", "pre_chorus", "chorus", "bridge", "outro"}
)

type LyricGenerationInput struct {
	Theme     string   `json:"theme"`
	Genre     string   `json:"genre"`
	Mood      string   `json:"mood,omitempty"`
	Structure []string `json:"structure"`
}

type LyricSection struct {
	Label string   `json:"label"`
	Lines []string `json:"lines"`
}

type LyricGenerationOutput struct {
	Title    string         `json:"title"`
	Sections []LyricSection `json:"sections"`
}

// LyricGeneration writes song lyrics following the requested song structure.
func LyricGeneration() *flow.Definition[LyricGenerationInput, LyricGenerationOutput] {
	return &flow.Definition[LyricGenerationInput, LyricGenerationOutput]{
		Name:        LyricGenerationName,
		Description: "Writes song lyrics for a theme, genre and song structure.",
		System:      system("You are a lyricist. Write original lyrics and never quote existing songs."),
		Input: models.Object(
			models.Req("theme", models.String().Len(3, 200)),
			models.Req("genre", models.Enum(lyricGenres...)),
			models.Opt("mood", models.String().Len(1, 50)),
			models.Req("structure", models.Array(models.Enum(lyricSections...)).Count(1, 8)),
		),
		Output: models.Object(
			models.Req("title", models.String().Len(1, 100)),
			models.Req("sections", models.Array(models.Object(
				models.Req("label", models.Enum(lyricSections...)),
				models.Req("lines", models.Array(models.String()).Count(1, 16)),
			)).Count(0, 8)),
		),
		Template: template.New(LyricGenerationName,
			template.Text[LyricGenerationInput]("brief", "Write {{ .Genre }} lyrics about: {{ .Theme }}"),
			template.When(template.Has(func(in LyricGenerationInput) string { return in.Mood }),
				template.Text[LyricGenerationInput]("mood", "The mood should feel {{ .Mood }}."),
			),
			template.Text[LyricGenerationInput]("structure-intro", "Follow this structure, one section per entry, in order:"),
			template.Each("structure", func(in LyricGenerationInput) []string { return in.Structure }, "{{ .Number }}. {{ .Item }}"),
		),
		Invariants: []invariant.Check[LyricGenerationInput, LyricGenerationOutput]{
			invariant.NonEmpty[LyricGenerationInput]("sections", func(out *LyricGenerationOutput) []LyricSection {
				return out.Sections
			}),
		},
	}
}

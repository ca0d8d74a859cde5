package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

var difficulties = []string{"easy", "medium", "hard"}

type CreativeChallengeInput struct {
	Discipline string `json:"discipline"`
	Difficulty string `json:"difficulty"`
	Theme      string `json:"theme,omitempty"`
}

type CreativeChallengeOutput struct {
	Title       string   `json:"title"`
	Brief       string   `json:"brief"`
	Constraints []string `json:"constraints"`
}

// CreativeChallenge proposes a community challenge.
func CreativeChallenge() *flow.Definition[CreativeChallengeInput, CreativeChallengeOutput] {
	return &flow.Definition[CreativeChallengeInput, CreativeChallengeOutput]{
		Name:        CreativeChallengeName,
		Description: "Proposes a creative challenge with a brief and constraints.",
		System:      system("You run weekly creative challenges for the community."),
		Input: models.Object(
			models.Req("discipline", models.String().Len(2, 80)),
			models.Req("difficulty", models.Enum(difficulties...)),
			models.Opt("theme", models.String().Len(1, 100)),
		),
		Output: models.Object(
			models.Req("title", models.String().Len(1, 100)),
			models.Req("brief", models.String().Len(1, 1000)),
			models.Req("constraints", models.Array(models.String().Len(1, 200)).Count(1, 6)),
		),
		Template: template.New(CreativeChallengeName,
			template.Text[CreativeChallengeInput]("brief",
				"Propose a {{ .Difficulty }} {{ .Discipline }} challenge with a title, a brief and 1 to 6 constraints."),
			template.When(template.Has(func(in CreativeChallengeInput) string { return in.Theme }),
				template.Text[CreativeChallengeInput]("theme", "This week's theme is \"{{ .Theme }}\"."),
			),
			template.When(template.Not(template.Has(func(in CreativeChallengeInput) string { return in.Theme })),
				template.Text[CreativeChallengeInput]("open-theme", "Pick a theme that suits the discipline."),
			),
		),
	}
}

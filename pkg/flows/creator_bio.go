package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

var bioTones = []string{"professional", "friendly", "witty", "poetic"}

type CreatorBioInput struct {
	Name         string   `json:"name"`
	Discipline   string   `json:"discipline"`
	Achievements []string `json:"achievements"`
	Tone         string   `json:"tone"`
}

type CreatorBioOutput struct {
	ShortBio string `json:"shortBio"`
	LongBio  string `json:"longBio"`
}

// CreatorBio writes a short and a long biography for a profile.
func CreatorBio() *flow.Definition[CreatorBioInput, CreatorBioOutput] {
	return &flow.Definition[CreatorBioInput, CreatorBioOutput]{
		Name:        CreatorBioName,
		Description: "Writes a short and a long profile biography.",
		System:      system("You write biographies in the third person."),
		Input: models.Object(
			models.Req("name", models.String().Len(1, 80)),
			models.Req("discipline", models.String().Len(2, 80)),
			models.Req("achievements", models.Array(models.String().Len(1, 200)).Count(1, 10)),
			models.Req("tone", models.Enum(bioTones...)),
		),
		Output: models.Object(
			models.Req("shortBio", models.String().MaxLen(280)),
			models.Req("longBio", models.String().MaxLen(3000)),
		),
		Template: template.New(CreatorBioName,
			template.Text[CreatorBioInput]("brief",
				"Write a {{ .Tone }} biography of {{ .Name }}, who works in {{ .Discipline }}.\n"+
					"The short bio must fit in 280 characters."),
			template.Text[CreatorBioInput]("achievements-intro", "Mention these achievements:"),
			template.Each("achievements", func(in CreatorBioInput) []string { return in.Achievements }, "- {{ .Item }}"),
		),
		Invariants: []invariant.Check[CreatorBioInput, CreatorBioOutput]{
			invariant.NonEmptyText[CreatorBioInput]("shortBio", func(out *CreatorBioOutput) string { return out.ShortBio }),
			invariant.NonEmptyText[CreatorBioInput]("longBio", func(out *CreatorBioOutput) string { return out.LongBio }),
		},
	}
}

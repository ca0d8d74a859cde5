package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

type CollabRecommendationInput struct {
	CreatorSkills []string `json:"creatorSkills"`
	ProjectNeeds  []string `json:"projectNeeds"`
	ProjectTitle  string   `json:"projectTitle"`
}

type CollabRecommendationOutput struct {
	Recommendation string   `json:"recommendation"`
	MatchScore     int      `json:"matchScore"`
	MatchedSkills  []string `json:"matchedSkills,omitempty"`
}

// CollabRecommendation explains how well a creator fits a collaboration.
func CollabRecommendation() *flow.Definition[CollabRecommendationInput, CollabRecommendationOutput] {
	return &flow.Definition[CollabRecommendationInput, CollabRecommendationOutput]{
		Name:        CollabRecommendationName,
		Description: "Scores and explains a creator's fit for a collaboration project.",
		System:      system("You match creators with collaboration projects."),
		Input: models.Object(
			models.Req("creatorSkills", models.Array(models.String().Len(1, 60)).Count(1, 10)),
			models.Req("projectNeeds", models.Array(models.String().Len(1, 60)).Count(1, 10)),
			models.Req("projectTitle", models.String().Len(3, 120)),
		),
		Output: models.Object(
			models.Req("recommendation", models.String().MaxLen(600)),
			models.Req("matchScore", models.Integer().Range(0, 100)),
			models.Opt("matchedSkills", models.Array(models.String()).Count(0, 10)),
		),
		Template: template.New(CollabRecommendationName,
			template.Text[CollabRecommendationInput]("project",
				"Project: {{ .ProjectTitle }}\nWrite one sentence recommending, or not, this creator and score the match from 0 to 100."),
			template.Text[CollabRecommendationInput]("skills-intro", "Creator skills:"),
			template.Each("skills", func(in CollabRecommendationInput) []string { return in.CreatorSkills }, "- {{ .Item }}"),
			template.Text[CollabRecommendationInput]("needs-intro", "Project needs:"),
			template.Each("needs", func(in CollabRecommendationInput) []string { return in.ProjectNeeds }, "- {{ .Item }}"),
		),
		Invariants: []invariant.Check[CollabRecommendationInput, CollabRecommendationOutput]{
			invariant.NonEmptyText[CollabRecommendationInput]("recommendation", func(out *CollabRecommendationOutput) string {
				return out.Recommendation
			}),
		},
	}
}

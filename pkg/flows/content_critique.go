package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

// Analysis goals a caller can select for a critique.
const (
	GoalClarity             = "clarity"
	GoalTone                = "tone"
	GoalKeywordOptimization = "keyword_optimization"
)

var contentTypes = []string{"lyrics", "article", "bio", "description", "post"}

type ContentCritiqueInput struct {
	Content        string   `json:"content"`
	ContentType    string   `json:"contentType"`
	AnalysisGoals  []string `json:"analysisGoals"`
	TargetKeywords []string `json:"targetKeywords,omitempty"`
}

// ContentCritiqueOutput carries feedback only for the goals the caller selected.
type ContentCritiqueOutput struct {
	OverallScore    int      `json:"overallScore"`
	ClarityFeedback string   `json:"clarityFeedback,omitempty"`
	ToneFeedback    string   `json:"toneFeedback,omitempty"`
	KeywordFeedback string   `json:"keywordFeedback,omitempty"`
	Suggestions     []string `json:"suggestions"`
}

func selected(goal string) func(ContentCritiqueInput) bool {
	return func(in ContentCritiqueInput) bool {
		return contains(in.AnalysisGoals, goal)
	}
}

// ContentCritique reviews written content against caller-selected goals.
func ContentCritique() *flow.Definition[ContentCritiqueInput, ContentCritiqueOutput] {
	return &flow.Definition[ContentCritiqueInput, ContentCritiqueOutput]{
		Name:        ContentCritiqueName,
		Description: "Critiques written content for clarity, tone and keyword coverage.",
		System:      system("You are an editor giving specific, constructive feedback."),
		Input: models.Object(
			models.Req("content", models.String().Len(20, 5000)),
			models.Req("contentType", models.Enum(contentTypes...)),
			models.Req("analysisGoals", models.Array(
				models.Enum(GoalClarity, GoalTone, GoalKeywordOptimization)).Count(1, 3).Unique()),
			models.Opt("targetKeywords", models.Array(models.String().Len(1, 60)).Count(0, 10)),
		),
		Output: models.Object(
			models.Req("overallScore", models.Integer().Range(0, 100)),
			models.Opt("clarityFeedback", models.String().MaxLen(2000)),
			models.Opt("toneFeedback", models.String().MaxLen(2000)),
			models.Opt("keywordFeedback", models.String().MaxLen(2000)),
			models.Req("suggestions", models.Array(models.String().Len(1, 400)).Count(1, 10)),
		),
		Template: template.New(ContentCritiqueName,
			template.Text[ContentCritiqueInput]("content",
				"Critique the following {{ .ContentType }} and score it from 0 to 100.\n---\n{{ .Content }}\n---"),
			template.Cases("goals", func(in ContentCritiqueInput) []string { return in.AnalysisGoals }, map[string]string{
				GoalClarity: "Clarity analysis: point out sentences that are hard to follow " +
					"and explain how to simplify them. Put this in clarityFeedback.",
				GoalTone: "Tone analysis: describe the voice of the piece and whether it suits a " +
					"{{ .ContentType }}. Put this in toneFeedback.",
				GoalKeywordOptimization: "Keyword optimization: judge how well the piece can be found by search." +
					"{{ if .TargetKeywords }} Check coverage of: {{ join \", \" .TargetKeywords }}.{{ end }}" +
					" Put this in keywordFeedback.",
			}),
			template.Text[ContentCritiqueInput]("suggestions", "List up to 10 concrete suggestions."),
		),
		Invariants: []invariant.Check[ContentCritiqueInput, ContentCritiqueOutput]{
			invariant.Requested(
				invariant.Optional("clarityFeedback", selected(GoalClarity),
					func(out *ContentCritiqueOutput) *string { return &out.ClarityFeedback }),
				invariant.Optional("toneFeedback", selected(GoalTone),
					func(out *ContentCritiqueOutput) *string { return &out.ToneFeedback }),
				invariant.Optional("keywordFeedback", selected(GoalKeywordOptimization),
					func(out *ContentCritiqueOutput) *string { return &out.KeywordFeedback }),
			),
		},
	}
}

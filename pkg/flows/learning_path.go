package flows

import (
	"fmt"

	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

type LearningPathInput struct {
	Goal          string   `json:"goal"`
	CurrentSkills []string `json:"currentSkills,omitempty"`
	WeeklyHours   int      `json:"weeklyHours"`
	Weeks         int      `json:"weeks"`
}

type Milestone struct {
	Week      int      `json:"week"`
	Focus     string   `json:"focus"`
	Resources []string `json:"resources,omitempty"`
}

type LearningPathOutput struct {
	Milestones []Milestone `json:"milestones"`
}

// milestonesWithinPlan rejects milestones scheduled after the last week of the plan.
func milestonesWithinPlan(in LearningPathInput, out *LearningPathOutput) error {
	var violations []models.Violation

	for i, m := range out.Milestones {
		if m.Week > in.Weeks {
			violations = append(violations, models.Violation{
				Field:   fmt.Sprintf("milestones.%d.week", i),
				Rule:    "within_plan",
				Message: fmt.Sprintf("week %d is after the last week of a %d week plan", m.Week, in.Weeks),
			})
		}
	}

	if len(violations) > 0 {
		return models.NewIncompleteOutput("milestones fall outside the plan", violations)
	}

	return nil
}

// LearningPath plans weekly learning milestones toward a goal.
func LearningPath() *flow.Definition[LearningPathInput, LearningPathOutput] {
	return &flow.Definition[LearningPathInput, LearningPathOutput]{
		Name:        LearningPathName,
		Description: "Plans weekly milestones toward a learning goal.",
		System:      system("You are a mentor planning realistic learning paths for creators."),
		Input: models.Object(
			models.Req("goal", models.String().Len(5, 300)),
			models.Opt("currentSkills", models.Array(models.String().Len(1, 60)).Count(0, 20)),
			models.Req("weeklyHours", models.Integer().Range(1, 40)),
			models.Req("weeks", models.Integer().Range(1, 26)),
		),
		Output: models.Object(
			models.Req("milestones", models.Array(models.Object(
				models.Req("week", models.Integer().Range(1, 26)),
				models.Req("focus", models.String().Len(1, 300)),
				models.Opt("resources", models.Array(models.String()).Count(0, 5)),
			)).Count(0, 26)),
		),
		Template: template.New(LearningPathName,
			template.Text[LearningPathInput]("goal",
				"Plan a {{ .Weeks }} week learning path with {{ .WeeklyHours }} hours per week.\nGoal: {{ .Goal }}"),
			template.When(template.HasItems(func(in LearningPathInput) []string { return in.CurrentSkills }),
				template.Text[LearningPathInput]("skills-intro", "The learner already knows:"),
				template.Each("skills", func(in LearningPathInput) []string { return in.CurrentSkills }, "- {{ .Item }}"),
			),
			template.Text[LearningPathInput]("format", "Give one milestone per week at most, numbered from week 1."),
		),
		Invariants: []invariant.Check[LearningPathInput, LearningPathOutput]{
			invariant.NonEmpty[LearningPathInput]("milestones", func(out *LearningPathOutput) []Milestone {
				return out.Milestones
			}),
			milestonesWithinPlan,
		},
	}
}

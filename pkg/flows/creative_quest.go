package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

var skillLevels = []string{"beginner", "intermediate", "advanced"}

type CreativeQuestInput struct {
	SkillLevel   string   `json:"skillLevel"`
	Interests    []string `json:"interests"`
	DurationDays int      `json:"durationDays"`
}

type Quest struct {
	Title     string   `json:"title"`
	Objective string   `json:"objective"`
	Steps     []string `json:"steps"`
	XP        int      `json:"xp"`
}

type CreativeQuestOutput struct {
	Quests []Quest `json:"quests"`
}

// CreativeQuest generates gamified practice quests.
func CreativeQuest() *flow.Definition[CreativeQuestInput, CreativeQuestOutput] {
	return &flow.Definition[CreativeQuestInput, CreativeQuestOutput]{
		Name:        CreativeQuestName,
		Description: "Generates practice quests with steps and experience points.",
		System:      system("You design short creative practice quests that reward progress with XP."),
		Input: models.Object(
			models.Req("skillLevel", models.Enum(skillLevels...)),
			models.Req("interests", models.Array(models.String().Len(1, 60)).Count(1, 5)),
			models.Req("durationDays", models.Integer().Range(1, 30)),
		),
		Output: models.Object(
			models.Req("quests", models.Array(models.Object(
				models.Req("title", models.String().Len(1, 100)),
				models.Req("objective", models.String().Len(1, 400)),
				models.Req("steps", models.Array(models.String().Len(1, 300)).Count(1, 8)),
				models.Req("xp", models.Integer().Range(10, 1000)),
			)).Count(1, 10)),
		),
		Template: template.New(CreativeQuestName,
			template.Text[CreativeQuestInput]("brief",
				"Create quests for a {{ .SkillLevel }} creator that fit into {{ .DurationDays }} days."),
			template.Text[CreativeQuestInput]("interests-intro", "Base one or more quests on each interest:"),
			template.Each("interests", func(in CreativeQuestInput) []string { return in.Interests }, "- {{ .Item }}"),
			template.Text[CreativeQuestInput]("xp", "Award between 10 and 1000 XP per quest, more for harder quests."),
		),
	}
}

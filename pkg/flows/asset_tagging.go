package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

var assetTypes = []string{"audio", "image", "video", "writing", "design"}

type AssetTaggingInput struct {
	AssetDescription string   `json:"assetDescription"`
	AssetType        string   `json:"assetType"`
	CommunityTrends  []string `json:"communityTrends,omitempty"`
}

type AssetTaggingOutput struct {
	SuggestedTags          []string `json:"suggestedTags"`
	EmotiveClassifications []string `json:"emotiveClassifications"`
}

// AssetTagging suggests discovery tags and emotional labels for an uploaded asset.
func AssetTagging() *flow.Definition[AssetTaggingInput, AssetTaggingOutput] {
	return &flow.Definition[AssetTaggingInput, AssetTaggingOutput]{
		Name:        AssetTaggingName,
		Description: "Suggests search tags and emotive classifications for an uploaded asset.",
		System:      system("You label creative assets so other members can discover them."),
		Input: models.Object(
			models.Req("assetDescription", models.String().Len(10, 2000)),
			models.Req("assetType", models.Enum(assetTypes...)),
			models.Opt("communityTrends", models.Array(models.String().Len(1, 60)).Count(0, 10)),
		),
		Output: models.Object(
			models.Req("suggestedTags", models.Array(models.String().Len(1, 40)).Count(3, 15).
				Describe("Short lowercase tags, most relevant first")),
			models.Req("emotiveClassifications", models.Array(models.String().Len(1, 40)).Count(1, 5).
				Describe("Emotions the asset evokes")),
		),
		Template: template.New(AssetTaggingName,
			template.Text[AssetTaggingInput]("asset",
				"Suggest between 3 and 15 tags and up to 5 emotive classifications for this {{ .AssetType }} asset.\n"+
					"Description: {{ .AssetDescription }}"),
			template.When(template.HasItems(func(in AssetTaggingInput) []string { return in.CommunityTrends }),
				template.Text[AssetTaggingInput]("trends-intro", "Prefer tags that connect to these community trends where they fit:"),
				template.Each("trends", func(in AssetTaggingInput) []string { return in.CommunityTrends }, "- {{ .Item }}"),
			),
		),
	}
}

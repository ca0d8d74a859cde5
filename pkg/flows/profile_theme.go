package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

const hexColorPattern = "^#[0-9a-fA-F]{6}$"

var profileVibes = []string{"minimal", "bold", "retro", "dreamy", "dark", "playful"}

type ProfileThemeInput struct {
	Bio            string   `json:"bio"`
	Vibe           string   `json:"vibe"`
	FavoriteColors []string `json:"favoriteColors,omitempty"`
}

type Palette struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
}

type FontPairing struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

type ProfileThemeOutput struct {
	ThemeName   string      `json:"themeName"`
	Palette     Palette     `json:"palette"`
	FontPairing FontPairing `json:"fontPairing"`
	Rationale   string      `json:"rationale"`
}

func hexColor() *models.Shape {
	return models.String().Match(hexColorPattern)
}

// ProfileTheme proposes a profile page theme from a member's bio.
func ProfileTheme() *flow.Definition[ProfileThemeInput, ProfileThemeOutput] {
	return &flow.Definition[ProfileThemeInput, ProfileThemeOutput]{
		Name:        ProfileThemeName,
		Description: "Proposes a colour palette and font pairing for a member profile.",
		System:      system("You are a visual designer creating profile page themes."),
		Input: models.Object(
			models.Req("bio", models.String().Len(10, 1000)),
			models.Req("vibe", models.Enum(profileVibes...)),
			models.Opt("favoriteColors", models.Array(hexColor()).Count(0, 5)),
		),
		Output: models.Object(
			models.Req("themeName", models.String().Len(1, 60)),
			models.Req("palette", models.Object(
				models.Req("primary", hexColor()),
				models.Req("secondary", hexColor()),
				models.Req("accent", hexColor()),
				models.Req("background", hexColor()),
			)),
			models.Req("fontPairing", models.Object(
				models.Req("heading", models.String().Len(1, 60)),
				models.Req("body", models.String().Len(1, 60)),
			)),
			models.Req("rationale", models.String().Len(1, 600)),
		),
		Template: template.New(ProfileThemeName,
			template.Text[ProfileThemeInput]("brief",
				"Design a {{ .Vibe }} profile theme for this member.\nBio: {{ .Bio }}"),
			template.When(template.HasItems(func(in ProfileThemeInput) []string { return in.FavoriteColors }),
				template.Text[ProfileThemeInput]("colors",
					"Build the palette around their favourite colours: {{ join \", \" .FavoriteColors }}."),
			),
			template.Text[ProfileThemeInput]("format",
				"Colours must be six digit hex codes such as #1A2B3C. Name one web font for headings and one for body text."),
		),
	}
}

package template

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type critiqueInput struct {
	Content  string
	Goals    []string
	Keywords []string
	Tone     string
	Count    int
}

func critiqueTemplate() *Template[critiqueInput] {
	return New("critique",
		Text[critiqueInput]("intro", "Review this piece:\n{{ .Content }}"),
		When(Has(func(in critiqueInput) string { return in.Tone }),
			Text[critiqueInput]("tone", "Write in a {{ .Tone | lower }} voice."),
		),
		Cases("goals", func(in critiqueInput) []string { return in.Goals }, map[string]string{
			"clarity":              "CLARITY: point out unclear passages.",
			"tone":                 "TONE: describe the emotional register.",
			"keyword_optimization": "KEYWORDS: check coverage of {{ join \", \" .Keywords }}.",
		}),
		Each("keywords", func(in critiqueInput) []string { return in.Keywords }, "{{ .Number }}. {{ .Item }}"),
	)
}

func TestRender_Interpolation(t *testing.T) {
	prompt, err := critiqueTemplate().Render(critiqueInput{Content: "A song about rain."})
	require.NoError(t, err)

	assert.Equal(t, "Review this piece:\nA song about rain.", prompt.Text)
	assert.Empty(t, prompt.Media)
}

func TestRender_Deterministic(t *testing.T) {
	in := critiqueInput{
		Content:  "A song about rain.",
		Goals:    []string{"tone", "clarity"},
		Keywords: []string{"rain", "night"},
		Tone:     "Warm",
	}

	first, err := critiqueTemplate().Render(in)
	require.NoError(t, err)

	second, err := critiqueTemplate().Render(in)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
}

func TestRender_ConditionalSection(t *testing.T) {
	tmpl := critiqueTemplate()

	without, err := tmpl.Render(critiqueInput{Content: "x"})
	require.NoError(t, err)
	assert.NotContains(t, without.Text, "voice")

	with, err := tmpl.Render(critiqueInput{Content: "x", Tone: "Playful"})
	require.NoError(t, err)
	assert.Contains(t, with.Text, "Write in a playful voice.")
}

func TestRender_CasesFollowInputOrder(t *testing.T) {
	tmpl := critiqueTemplate()

	only, err := tmpl.Render(critiqueInput{Content: "x", Goals: []string{"keyword_optimization"}, Keywords: []string{"lofi"}})
	require.NoError(t, err)
	assert.Contains(t, only.Text, "KEYWORDS: check coverage of lofi.")
	assert.NotContains(t, only.Text, "CLARITY")
	assert.NotContains(t, only.Text, "TONE")

	all, err := tmpl.Render(critiqueInput{Content: "x", Goals: []string{"tone", "keyword_optimization", "clarity"}})
	require.NoError(t, err)

	tone := strings.Index(all.Text, "TONE:")
	keywords := strings.Index(all.Text, "KEYWORDS:")
	clarity := strings.Index(all.Text, "CLARITY:")

	require.True(t, tone >= 0 && keywords >= 0 && clarity >= 0)
	assert.Less(t, tone, keywords)
	assert.Less(t, keywords, clarity)
}

func TestRender_EachKeepsOrder(t *testing.T) {
	prompt, err := critiqueTemplate().Render(critiqueInput{Content: "x", Keywords: []string{"b", "a", "c"}})
	require.NoError(t, err)

	assert.Contains(t, prompt.Text, "1. b\n2. a\n3. c")
}

func TestRender_MediaSection(t *testing.T) {
	type artInput struct {
		Image string
	}

	png := []byte{0x89, 'P', 'N', 'G'}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	tmpl := New("art",
		Text[artInput]("ask", "Give feedback on the attached artwork."),
		Media("image", func(in artInput) []string { return []string{in.Image} }),
	)

	prompt, err := tmpl.Render(artInput{Image: uri})
	require.NoError(t, err)

	require.Len(t, prompt.Media, 1)
	assert.Equal(t, "image/png", prompt.Media[0].MIMEType)
	assert.Equal(t, png, prompt.Media[0].Data)
	assert.Equal(t, "Give feedback on the attached artwork.\n\n[media 1: image/png]", prompt.Text)
}

func TestRender_ExecutionError(t *testing.T) {
	type in struct{ Name string }

	tmpl := New("broken", Text[in]("bad", "{{ .Missing }}"))

	_, err := tmpl.Render(in{Name: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

func TestText_MalformedTemplatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Text[critiqueInput]("bad", "{{ .Content ")
	})
}

func TestPredicates(t *testing.T) {
	in := critiqueInput{Goals: []string{"tone"}, Count: 3}

	hasGoals := HasItems(func(in critiqueInput) []string { return in.Goals })
	wantsTone := Contains(func(in critiqueInput) []string { return in.Goals }, "tone")
	wantsClarity := Contains(func(in critiqueInput) []string { return in.Goals }, "clarity")
	counted := Positive(func(in critiqueInput) int { return in.Count })

	assert.True(t, hasGoals(in))
	assert.True(t, wantsTone(in))
	assert.False(t, wantsClarity(in))
	assert.True(t, Not(wantsClarity)(in))
	assert.True(t, All(hasGoals, wantsTone, counted)(in))
	assert.False(t, All(wantsTone, wantsClarity)(in))
	assert.True(t, AnyOf(wantsClarity, wantsTone)(in))
	assert.False(t, AnyOf(wantsClarity)(in))
}

func TestFuncMap(t *testing.T) {
	type in struct {
		Tone  string
		Tags  []string
		Count *int
	}

	tmpl := New("funcs", Text[in]("all",
		`{{ default "neutral" .Tone }}|{{ upper "a" }}|{{ trim "  b " }}|{{ add 1 2 }}|{{ json .Tags }}|{{ default 0 .Count }}`))

	prompt, err := tmpl.Render(in{Tags: []string{"x", "y"}})
	require.NoError(t, err)

	assert.Equal(t, `neutral|A|b|3|["x","y"]|0`, prompt.Text)
}

func TestParseMediaURI(t *testing.T) {
	part, err := ParseMediaURI("https://cdn.example.com/art/piece.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", part.MIMEType)
	assert.Equal(t, "https://cdn.example.com/art/piece.png", part.URI)
	assert.False(t, part.Inline())

	part, err = ParseMediaURI("gs://bucket/object")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", part.MIMEType)

	part, err = ParseMediaURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), part.Data)

	_, err = ParseMediaURI("ftp://example.com/file")
	require.ErrorIs(t, err, ErrUnsupportedMediaURI)

	_, err = ParseMediaURI("data:image/png;base64,!!!")
	require.ErrorIs(t, err, ErrUnsupportedMediaURI)

	_, err = ParseMediaURI("data:image/png;base64")
	require.ErrorIs(t, err, ErrUnsupportedMediaURI)
}

func TestParseMediaURI_FixedTypeTable(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"https://cdn.example.com/a/COVER.JPG", "image/jpeg"},
		{"gs://bucket/loops/beat.flac", "audio/flac"},
		{"https://cdn.example.com/clip.webm?size=large", "video/webm"},
		{"https://cdn.example.com/sketch.psd", "application/octet-stream"},
		{"https://cdn.example.com/score.xyz123", "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			part, err := ParseMediaURI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, part.MIMEType)
		})
	}
}

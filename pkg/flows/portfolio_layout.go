package flows

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

// SectionKind labels a portfolio layout section.
type SectionKind string

const (
	SectionHero    SectionKind = "hero"
	SectionGallery SectionKind = "gallery"
	SectionAbout   SectionKind = "about"
	SectionContact SectionKind = "contact"
)

var (
	portfolioTones = []string{"professional", "playful", "minimal", "bold"}

	ErrUnknownSectionKind = errors.New("unknown section kind")
	ErrSectionContent     = errors.New("invalid section content")
)

type PortfolioLayoutInput struct {
	CreatorName string   `json:"creatorName"`
	Discipline  string   `json:"discipline"`
	Highlights  []string `json:"highlights"`
	Tone        string   `json:"tone,omitempty"`
}

type PortfolioLayoutOutput struct {
	Sections []LayoutSection `json:"sections"`
}

// SectionContent is the body of a layout section. The concrete type is
// decided by the section kind.
type SectionContent interface {
	Kind() SectionKind
	validate() error
}

type HeroContent struct {
	Headline     string `json:"headline"`
	Subheadline  string `json:"subheadline,omitempty"`
	CallToAction string `json:"callToAction,omitempty"`
}

type GalleryItem struct {
	Title   string `json:"title"`
	Caption string `json:"caption,omitempty"`
}

type GalleryContent struct {
	Items []GalleryItem `json:"items"`
}

type AboutContent struct {
	Paragraphs []string `json:"paragraphs"`
}

type ContactContent struct {
	Message  string   `json:"message"`
	Channels []string `json:"channels,omitempty"`
}

func (HeroContent) Kind() SectionKind    { return SectionHero }
func (GalleryContent) Kind() SectionKind { return SectionGallery }
func (AboutContent) Kind() SectionKind   { return SectionAbout }
func (ContactContent) Kind() SectionKind { return SectionContact }

func (c HeroContent) validate() error {
	if c.Headline == "" {
		return fmt.Errorf("%w: hero needs a headline", ErrSectionContent)
	}

	return nil
}

func (c GalleryContent) validate() error {
	if len(c.Items) == 0 {
		return fmt.Errorf("%w: gallery needs at least one item", ErrSectionContent)
	}

	return nil
}

func (c AboutContent) validate() error {
	if len(c.Paragraphs) == 0 {
		return fmt.Errorf("%w: about needs at least one paragraph", ErrSectionContent)
	}

	return nil
}

func (c ContactContent) validate() error {
	if c.Message == "" {
		return fmt.Errorf("%w: contact needs a message", ErrSectionContent)
	}

	return nil
}

// LayoutSection is one section of a generated portfolio page.
type LayoutSection struct {
	Kind    SectionKind    `json:"kind"`
	Title   string         `json:"title"`
	Content SectionContent `json:"content"`
}

// UnmarshalJSON resolves the content payload by section kind.
func (s *LayoutSection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kind    SectionKind     `json:"kind"`
		Title   string          `json:"title"`
		Content json.RawMessage `json:"content"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var content SectionContent

	switch raw.Kind {
	case SectionHero:
		content = &HeroContent{}
	case SectionGallery:
		content = &GalleryContent{}
	case SectionAbout:
		content = &AboutContent{}
	case SectionContact:
		content = &ContactContent{}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSectionKind, raw.Kind)
	}

	if len(raw.Content) == 0 || string(raw.Content) == "null" {
		return fmt.Errorf("%w: %s section has no content", ErrSectionContent, raw.Kind)
	}

	if err := json.Unmarshal(raw.Content, content); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSectionContent, raw.Kind, err)
	}

	if err := content.validate(); err != nil {
		return err
	}

	s.Kind = raw.Kind
	s.Title = raw.Title
	s.Content = content

	return nil
}

// sectionContentShape lists every property any section body may carry. The
// per-kind requirements are enforced when the section is decoded.
func sectionContentShape() *models.Shape {
	return models.Object(
		models.Opt("headline", models.String().Len(1, 120)),
		models.Opt("subheadline", models.String().MaxLen(200)),
		models.Opt("callToAction", models.String().MaxLen(60)),
		models.Opt("items", models.Array(models.Object(
			models.Req("title", models.String().Len(1, 120)),
			models.Opt("caption", models.String().MaxLen(300)),
		)).Count(0, 12)),
		models.Opt("paragraphs", models.Array(models.String().Len(1, 1200)).Count(0, 4)),
		models.Opt("message", models.String().MaxLen(400)),
		models.Opt("channels", models.Array(models.String()).Count(0, 6)),
	)
}

func sectionKinds(out *PortfolioLayoutOutput) []string {
	kinds := make([]string, 0, len(out.Sections))
	for _, s := range out.Sections {
		kinds = append(kinds, string(s.Kind))
	}

	return kinds
}

// PortfolioLayout lays out a portfolio page with exactly the four standard sections.
func PortfolioLayout() *flow.Definition[PortfolioLayoutInput, PortfolioLayoutOutput] {
	kinds := []string{string(SectionHero), string(SectionGallery), string(SectionAbout), string(SectionContact)}

	return &flow.Definition[PortfolioLayoutInput, PortfolioLayoutOutput]{
		Name:        PortfolioLayoutName,
		Description: "Generates a portfolio page made of hero, gallery, about and contact sections.",
		System:      system("You are a web designer structuring portfolio pages."),
		Input: models.Object(
			models.Req("creatorName", models.String().Len(1, 80)),
			models.Req("discipline", models.String().Len(2, 80)),
			models.Req("highlights", models.Array(models.String().Len(1, 200)).Count(1, 12)),
			models.Opt("tone", models.Enum(portfolioTones...)),
		),
		Output: models.Object(
			models.Req("sections", models.Array(models.Object(
				models.Req("kind", models.Enum(kinds...)),
				models.Req("title", models.String().Len(1, 120)),
				models.Req("content", sectionContentShape()),
			)).Count(1, 8)),
		),
		Template: template.New(PortfolioLayoutName,
			template.Text[PortfolioLayoutInput]("brief",
				"Lay out a portfolio page for {{ .CreatorName }}, who works in {{ .Discipline }}."),
			template.When(template.Has(func(in PortfolioLayoutInput) string { return in.Tone }),
				template.Text[PortfolioLayoutInput]("tone", "Keep the copy {{ .Tone }}."),
			),
			template.Text[PortfolioLayoutInput]("highlights-intro", "Feature these highlights in the gallery:"),
			template.Each("highlights", func(in PortfolioLayoutInput) []string { return in.Highlights }, "- {{ .Item }}"),
			template.Text[PortfolioLayoutInput]("sections",
				"Return one section of each kind: hero (headline, optional subheadline and callToAction), "+
					"gallery (items with title and caption), about (paragraphs) and contact (message and optional channels)."),
		),
		Invariants: []invariant.Check[PortfolioLayoutInput, PortfolioLayoutOutput]{
			invariant.RequiredSections[PortfolioLayoutInput]("sections", sectionKinds, kinds...),
		},
	}
}

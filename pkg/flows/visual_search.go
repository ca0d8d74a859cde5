package flows

import (
	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/invariant"
	"github.com/museloop/genflow/pkg/models"
	"github.com/museloop/genflow/pkg/template"
)

type VisualSearchInput struct {
	Query      string `json:"query"`
	MaxResults *int   `json:"maxResults,omitempty"`
}

type Concept struct {
	Label    string  `json:"label"`
	Relation string  `json:"relation"`
	Weight   float64 `json:"weight"`
}

type VisualSearchOutput struct {
	CentralLabel    string    `json:"centralLabel"`
	RelatedConcepts []Concept `json:"relatedConcepts"`
}

const defaultVisualResults = 8

// Limit is the number of related concepts the caller wants back.
func (in VisualSearchInput) Limit() int {
	if in.MaxResults == nil {
		return defaultVisualResults
	}

	return *in.MaxResults
}

func limitConcepts(in VisualSearchInput, out *VisualSearchOutput) error {
	if limit := in.Limit(); len(out.RelatedConcepts) > limit {
		out.RelatedConcepts = out.RelatedConcepts[:limit]
	}

	return nil
}

// VisualSearch maps a search query to a graph of related concepts centred on the query.
func VisualSearch() *flow.Definition[VisualSearchInput, VisualSearchOutput] {
	return &flow.Definition[VisualSearchInput, VisualSearchOutput]{
		Name:        VisualSearchName,
		Description: "Builds a concept map around a search query.",
		System:      system("You map search queries to related genres, styles, moods and techniques."),
		Input: models.Object(
			models.Req("query", models.String().Len(2, 100)),
			models.Opt("maxResults", models.Integer().Range(1, 20)),
		),
		Output: models.Object(
			models.Opt("centralLabel", models.String()),
			models.Req("relatedConcepts", models.Array(models.Object(
				models.Req("label", models.String().Len(1, 80)),
				models.Req("relation", models.Enum("genre", "style", "mood", "technique", "artist", "other")),
				models.Req("weight", models.Number().Range(0, 1)),
			)).Count(1, 20)),
		),
		Template: template.New(VisualSearchName,
			template.Text[VisualSearchInput]("query",
				"Map concepts related to the search query \"{{ .Query }}\". "+
					"Use the query as the central label."),
			template.Text[VisualSearchInput]("limit",
				"Return at most {{ .Limit }} related concepts, each with a weight between 0 and 1."),
		),
		Invariants: []invariant.Check[VisualSearchInput, VisualSearchOutput]{
			invariant.Pin(func(in VisualSearchInput, out *VisualSearchOutput) {
				out.CentralLabel = in.Query
			}),
			limitConcepts,
		},
	}
}

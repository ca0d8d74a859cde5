package invariant

import (
	"errors"
	"testing"

	"github.com/museloop/genflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type section struct {
	Kind string
}

type layout struct {
	Sections []section
}

type search struct {
	Query string
}

type searchResult struct {
	CentralLabel string
	Media        []models.MediaPart
	Items        []string
}

type critique struct {
	Goals []string
}

type critiqueResult struct {
	Tone    string
	Clarity string
}

func sectionKinds(out *layout) []string {
	kinds := make([]string, 0, len(out.Sections))
	for _, s := range out.Sections {
		kinds = append(kinds, s.Kind)
	}

	return kinds
}

func TestRequiredSections(t *testing.T) {
	check := RequiredSections[struct{}]("sections", sectionKinds, "hero", "gallery", "about", "contact")

	t.Run("all present in any order", func(t *testing.T) {
		out := &layout{Sections: []section{{"contact"}, {"hero"}, {"about"}, {"gallery"}, {"gallery"}}}
		require.NoError(t, check(struct{}{}, out))
		assert.Equal(t, "contact", out.Sections[0].Kind)
	})

	t.Run("missing one", func(t *testing.T) {
		out := &layout{Sections: []section{{"hero"}, {"gallery"}, {"about"}}}
		err := check(struct{}{}, out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrIncompleteOutput))

		flowErr, ok := models.AsFlowError(err)
		require.True(t, ok)
		require.Len(t, flowErr.Violations, 1)
		assert.Contains(t, flowErr.Violations[0].Message, "contact")
	})

	t.Run("unexpected label", func(t *testing.T) {
		out := &layout{Sections: []section{{"hero"}, {"gallery"}, {"about"}, {"contact"}, {"blog"}}}
		err := check(struct{}{}, out)
		require.Error(t, err)

		flowErr, _ := models.AsFlowError(err)
		assert.Equal(t, "unexpected_section", flowErr.Violations[0].Rule)
	})
}

func TestNonEmptyChecks(t *testing.T) {
	text := NonEmptyText[search]("centralLabel", func(out *searchResult) string { return out.CentralLabel })
	media := NonEmptyMedia[search]("media", func(out *searchResult) []models.MediaPart { return out.Media })
	items := NonEmpty[search]("items", func(out *searchResult) []string { return out.Items })

	empty := &searchResult{CentralLabel: "  ", Media: []models.MediaPart{{MIMEType: "image/png"}}}

	for _, check := range []Check[search, searchResult]{text, media, items} {
		err := check(search{}, empty)
		require.Error(t, err)
		assert.True(t, models.IsRetryable(err))

		flowErr, _ := models.AsFlowError(err)
		assert.Equal(t, models.ReasonEmptyPayload, flowErr.Reason)
	}

	full := &searchResult{
		CentralLabel: "lofi",
		Media:        []models.MediaPart{{MIMEType: "image/png", Data: []byte{1}}},
		Items:        []string{"x"},
	}

	require.NoError(t, Run([]Check[search, searchResult]{text, media, items}, search{}, full))
}

func TestPin(t *testing.T) {
	pin := Pin(func(in search, out *searchResult) { out.CentralLabel = in.Query })

	out := &searchResult{CentralLabel: "Lo-Fi Hip-Hop"}
	require.NoError(t, pin(search{Query: "lofi hip hop"}, out))
	assert.Equal(t, "lofi hip hop", out.CentralLabel)
}

func TestRun_StopsAtFirstFailure(t *testing.T) {
	calls := 0
	counting := func(search, *searchResult) error {
		calls++

		return nil
	}

	checks := []Check[search, searchResult]{
		counting,
		NonEmptyText[search]("centralLabel", func(out *searchResult) string { return out.CentralLabel }),
		counting,
	}

	err := Run(checks, search{}, &searchResult{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRequested(t *testing.T) {
	wants := func(goal string) func(critique) bool {
		return func(in critique) bool {
			for _, g := range in.Goals {
				if g == goal {
					return true
				}
			}

			return false
		}
	}

	check := Requested(
		Optional("tone", wants("tone"), func(out *critiqueResult) *string { return &out.Tone }),
		Optional("clarity", wants("clarity"), func(out *critiqueResult) *string { return &out.Clarity }),
	)

	t.Run("unrequested fields are cleared", func(t *testing.T) {
		out := &critiqueResult{Tone: "warm", Clarity: "fine"}
		require.NoError(t, check(critique{Goals: []string{"tone"}}, out))
		assert.Equal(t, "warm", out.Tone)
		assert.Empty(t, out.Clarity)
	})

	t.Run("requested fields must be present", func(t *testing.T) {
		out := &critiqueResult{Tone: "warm"}
		err := check(critique{Goals: []string{"tone", "clarity"}}, out)
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrIncompleteOutput))

		flowErr, _ := models.AsFlowError(err)
		require.Len(t, flowErr.Violations, 1)
		assert.Equal(t, "clarity", flowErr.Violations[0].Field)
	})
}

// Package flows defines the generation flows served by the platform.
package flows

import (
	"fmt"

	"github.com/museloop/genflow/pkg/flow"
	"github.com/museloop/genflow/pkg/protocol"
	"github.com/museloop/genflow/pkg/registry"
)

// Flow names.
const (
	AssetTaggingName         = "asset-tagging"
	LyricGenerationName      = "lyric-generation"
	ProfileThemeName         = "profile-theme"
	PortfolioLayoutName      = "portfolio-layout"
	CreativeQuestName        = "creative-quest"
	LearningPathName         = "learning-path"
	ContentCritiqueName      = "content-critique"
	VisualSearchName         = "visual-search"
	DJCommentaryName         = "dj-commentary"
	CoverArtName             = "cover-art"
	ArtworkFeedbackName      = "artwork-feedback"
	CollabRecommendationName = "collab-recommendation"
	CreatorBioName           = "creator-bio"
	CreativeChallengeName    = "creative-challenge"
)

const platformPersona = "You are the creative assistant of MuseLoop, a community where musicians, " +
	"visual artists and writers share their work. Answer only with what is asked."

// RegisterDefaults binds every flow to the orchestrator and registers it.
func RegisterDefaults(reg *registry.Registry, o *flow.Orchestrator) error {
	binders := []func() (protocol.Flow, error){
		func() (protocol.Flow, error) { return flow.Bind(o, AssetTagging()) },
		func() (protocol.Flow, error) { return flow.Bind(o, LyricGeneration()) },
		func() (protocol.Flow, error) { return flow.Bind(o, ProfileTheme()) },
		func() (protocol.Flow, error) { return flow.Bind(o, PortfolioLayout()) },
		func() (protocol.Flow, error) { return flow.Bind(o, CreativeQuest()) },
		func() (protocol.Flow, error) { return flow.Bind(o, LearningPath()) },
		func() (protocol.Flow, error) { return flow.Bind(o, ContentCritique()) },
		func() (protocol.Flow, error) { return flow.Bind(o, VisualSearch()) },
		func() (protocol.Flow, error) { return flow.Bind(o, DJCommentary()) },
		func() (protocol.Flow, error) { return flow.Bind(o, CoverArt()) },
		func() (protocol.Flow, error) { return flow.Bind(o, ArtworkFeedback()) },
		func() (protocol.Flow, error) { return flow.Bind(o, CollabRecommendation()) },
		func() (protocol.Flow, error) { return flow.Bind(o, CreatorBio()) },
		func() (protocol.Flow, error) { return flow.Bind(o, CreativeChallenge()) },
	}

	for _, bind := range binders {
		f, err := bind()
		if err != nil {
			return fmt.Errorf("failed to bind flow: %w", err)
		}

		if err := reg.Register(f); err != nil {
			return err
		}
	}

	return nil
}

func system(task string) string {
	return platformPersona + "\n" + task
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}

	return false
}

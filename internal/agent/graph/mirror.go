package graph

import (
	"context"
	"fmt"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/nlp"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/profiler"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
)

// Well-known settings keys written after each run.
const (
	KeyLanguage         = "phase0:language"
	KeyClassification   = "phase0:classification"
	KeyTopicsKeywords   = "phase0:topics_keywords"
	KeyEntities         = "phase0:entities"
	KeyComplexity       = "phase0:complexity"
	KeyDetectors        = "phase0:detectors"
	KeyPhonetic         = "phase0:keywords:phonetic"
	KeySimilarityHint   = "phase0:keywords:similarity_hint"
	KeyEmbeddingQueued  = "phase0:embedding:queued"
	KeyAvailableActions = "phase0:available_actions"
	KeyProfile          = "phase0:profile"

	KeyIntent         = "ui:intent"
	KeyUILanguage     = "ui:language"
	KeyTone           = "ui:tone"
	KeyTopics         = "ui:topics"
	KeyKeywords       = "ui:keywords"
	KeyUIEntities     = "ui:entities"
	KeyUIComplexity   = "ui:complexity"
	KeyAmbiguity      = "ui:ambiguity"
	KeyAmbiguityScore = "ui:ambiguity_score"
	KeyUrgencyMarkers = "ui:urgency_markers"
	KeyIncomplete     = "ui:incomplete"
)

// LastPromptKey holds the latest message text of room; suffix is "last" or "prev".
func LastPromptKey(room fmt.Stringer, suffix string) string {
	return fmt.Sprintf("ui:lastPrompt:%s:%s", room, suffix)
}

// mirror publishes the analysis in one settings write so readers never see a
// half-updated message.
func (p *Preprocessor) mirror(ctx context.Context, msg *model.Message, a *model.Analysis, profile profiler.PhaseProfile) error {
	var actions []string
	if p.cfg.Actions != nil {
		for _, act := range p.cfg.Actions.Actions() {
			actions = append(actions, act.Name())
		}
	}

	return p.cfg.Settings.Update(ctx, false, func(tx *settings.Tx) error {
		if a.Language != "" {
			tx.Set(KeyLanguage, settings.String(a.Language))
			tx.Set(KeyUILanguage, settings.String(a.Language))
		}
		if c := a.Classification(); c != nil {
			tx.Set(KeyClassification, settings.Object(c))
			tx.Set(KeyIntent, settings.String(string(c.Intent)))
			tx.Set(KeyTone, settings.String(string(c.Tone)))
		}
		if a.Keywords != nil {
			tx.Set(KeyTopicsKeywords, settings.Object(nlp.TopicsKeywords{Topics: a.Topics, Keywords: a.Keywords}))
			if len(a.Topics) > 0 {
				tx.Set(KeyTopics, settings.Object(a.Topics))
			}
			if len(a.Keywords) > 0 {
				tx.Set(KeyKeywords, settings.Object(a.Keywords))
			}
		}
		if a.Entities != nil {
			tx.Set(KeyEntities, settings.Object(a.Entities))
			if len(a.Entities) > 0 {
				tx.Set(KeyUIEntities, settings.Object(a.Entities))
			}
		}
		if a.Complexity != nil {
			tx.Set(KeyComplexity, settings.Object(a.Complexity))
			tx.Set(KeyUIComplexity, settings.Object(a.Complexity))
		}
		if d := a.Detections; d != nil {
			tx.Set(KeyDetectors, settings.Object(d))
			tx.Set(KeyAmbiguityScore, settings.Number(d.AmbiguityScore))
			tx.Set(KeyUrgencyMarkers, settings.Int(int64(len(d.UrgencyMarkers))))
			tx.Set(KeyIncomplete, settings.Bool(d.Incomplete))
		}
		if ph := a.Phonetics; ph != nil {
			tx.Set(KeyPhonetic, settings.Object(ph.Codes))
			tx.Set(KeySimilarityHint, settings.Number(ph.SimilarityHint))
		}
		tx.Set(KeyEmbeddingQueued, settings.Bool(a.EmbeddingQueued))
		tx.Set(KeyAmbiguity, settings.Bool(a.Ambiguous))
		if actions != nil {
			tx.Set(KeyAvailableActions, settings.Object(actions))
		}

		last := LastPromptKey(msg.RoomID, "last")
		if prev := tx.Get(last); !prev.IsNull() {
			tx.Set(LastPromptKey(msg.RoomID, "prev"), prev)
		}
		tx.Set(last, settings.String(msg.Text))

		tx.Set(KeyProfile, settings.Object(profile))
		return nil
	})
}

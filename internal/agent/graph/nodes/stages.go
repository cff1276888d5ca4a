package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/nlp"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
	"github.com/Chative-core-poc-v1/preflight/internal/core"
)

// EmbeddingsFlagKey turns the embedding stage on.
const EmbeddingsFlagKey = "ui:phase0_embeddings"

func Language(_ context.Context, r *Run) error {
	lang := nlp.DetectLanguage(r.Message.Text)
	r.Analysis.Language = lang
	r.State.SetValue("language", lang)
	r.State.SetData("language", lang)
	return nil
}

func Classification(_ context.Context, r *Run) error {
	c := nlp.Classify(r.Message.Text)
	r.Analysis.Intent = c.Intent
	r.Analysis.Sentiment = c.Sentiment
	r.Analysis.Tone = c.Tone
	r.State.SetValue("intent", string(c.Intent))
	r.State.SetValue("sentiment", string(c.Sentiment))
	r.State.SetValue("tone", string(c.Tone))
	r.State.SetData("classification", c)
	return nil
}

func TopicsKeywords(keywordLimit, topicLimit int) StageFunc {
	return func(_ context.Context, r *Run) error {
		tk := nlp.ExtractTopicsKeywords(r.Message.Text, keywordLimit, topicLimit)
		r.Analysis.Keywords = tk.Keywords
		r.Analysis.Topics = tk.Topics
		r.State.SetValue("keywords", strings.Join(tk.Keywords, ", "))
		r.State.SetValue("topics", strings.Join(tk.Topics, ", "))
		r.State.SetData("topics_keywords", tk)
		return nil
	}
}

func Entities(_ context.Context, r *Run) error {
	ents := nlp.Entities(r.Message.Text)
	r.Analysis.Entities = ents
	r.State.SetValue("entities", strings.Join(ents, ", "))
	r.State.SetData("entities", ents)
	return nil
}

func Complexity(ctx context.Context, r *Run) error {
	recent, err := r.RecentContext(ctx)
	if err != nil {
		return err
	}
	c := nlp.AssessComplexity(r.Message.Text, len(recent))
	r.Analysis.Complexity = &c
	r.State.SetValue("complexity", c.Level.String())
	r.State.SetData("complexity", c)
	return nil
}

func Detectors(ctx context.Context, r *Run) error {
	recent, err := r.RecentContext(ctx)
	if err != nil {
		return err
	}
	d := nlp.Detect(r.Message.Text, len(recent))
	r.Analysis.Detections = &d
	r.State.SetValue("ambiguity_score", fmt.Sprintf("%.2f", d.AmbiguityScore))
	r.State.SetData("detectors", d)
	return nil
}

// EmbeddingQueue submits the message for embedding when the flag is on and
// the runtime is not in test mode.
func EmbeddingQueue(store *settings.Store, queue model.EmbeddingQueue, env core.Environment, priority int) StageFunc {
	return func(ctx context.Context, r *Run) error {
		enabled, err := store.GetBool(EmbeddingsFlagKey, false)
		if err != nil {
			return err
		}
		r.Analysis.EmbeddingQueued = false
		if enabled && !env.IsTesting() && queue != nil {
			if err := queue.QueueEmbeddingGeneration(ctx, r.Message, priority); err != nil {
				return fmt.Errorf("queue embedding: %w", err)
			}
			r.Analysis.EmbeddingQueued = true
		}
		r.State.SetData("embedding_queued", r.Analysis.EmbeddingQueued)
		return nil
	}
}

// Phonetic codes the keywords found earlier, or extracts its own when the
// keyword stage produced nothing.
func Phonetic(keywordLimit int) StageFunc {
	return func(_ context.Context, r *Run) error {
		keywords := r.Analysis.Keywords
		if len(keywords) == 0 {
			keywords = nlp.Keywords(r.Message.Text, keywordLimit)
		}
		p := nlp.AnalyzePhonetics(keywords)
		r.Analysis.Phonetics = &p
		r.State.SetData("phonetic", p)
		return nil
	}
}

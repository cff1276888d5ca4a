// Package graph compiles the per-message preprocessing stages into an eino
// chain and publishes the aggregate analysis to the turn state and settings.
package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/graph/nodes"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/graph/observers"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/nlp"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/profiler"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
	"github.com/Chative-core-poc-v1/preflight/internal/core"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

const (
	PhaseTag = "phase0"
	// EnabledKey switches the whole preprocessor off when false.
	EnabledKey = "ui:phase0_enabled"
)

// Config holds everything needed to build the preprocessor.
type Config struct {
	Settings    *settings.Store
	Memories    model.MemoryRepository
	Embeddings  model.EmbeddingQueue
	Actions     model.ActionSource
	Environment core.Environment
	Pipeline    model.PipelineConfig
}

type Result struct {
	Analysis *model.Analysis
	State    *model.TurnState
	Profile  profiler.PhaseProfile
}

type Preprocessor struct {
	cfg      Config
	runnable compose.Runnable[*nodes.Run, *nodes.Run]
}

// New validates cfg and compiles the stage chain.
func New(ctx context.Context, cfg Config) (*Preprocessor, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings store is nil")
	}
	if cfg.Pipeline.KeywordLimit <= 0 {
		cfg.Pipeline.KeywordLimit = nlp.DefaultKeywordLimit
	}
	if cfg.Pipeline.TopicLimit <= 0 {
		cfg.Pipeline.TopicLimit = nlp.DefaultTopicLimit
	}

	runnable, err := buildChain(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Preprocessor{cfg: cfg, runnable: runnable}, nil
}

func buildChain(ctx context.Context, cfg Config) (compose.Runnable[*nodes.Run, *nodes.Run], error) {
	p := cfg.Pipeline
	stages := []struct {
		name string
		fn   nodes.StageFunc
	}{
		{nodes.NodeLanguage, nodes.Language},
		{nodes.NodeClassification, nodes.Classification},
		{nodes.NodeTopicsKeywords, nodes.TopicsKeywords(p.KeywordLimit, p.TopicLimit)},
		{nodes.NodeEntities, nodes.Entities},
		{nodes.NodeComplexity, nodes.Complexity},
		{nodes.NodeDetectors, nodes.Detectors},
		{nodes.NodeEmbeddingQueue, nodes.EmbeddingQueue(cfg.Settings, cfg.Embeddings, cfg.Environment, p.EmbeddingPriority)},
		{nodes.NodePhonetic, nodes.Phonetic(p.KeywordLimit)},
	}

	chain := compose.NewChain[*nodes.Run, *nodes.Run]()
	for _, s := range stages {
		chain.AppendLambda(nodes.NewStageNode(s.name, cfg.Settings, s.fn), compose.WithNodeName(s.name))
	}

	runnable, err := chain.Compile(ctx)
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling preprocessing chain")
		return nil, fmt.Errorf("error compiling preprocessing chain: %w", err)
	}
	logx.Debug().Int("stages", len(stages)).Msg("Preprocessing chain compiled successfully")
	return runnable, nil
}

// Enabled reads EnabledKey, default true.
func (p *Preprocessor) Enabled() (bool, error) {
	return p.cfg.Settings.GetBool(EnabledKey, true)
}

// Process runs every enabled stage on msg in order. Stage failures are
// isolated; the returned error is non-nil only when shared state is unusable.
func (p *Preprocessor) Process(ctx context.Context, msg *model.Message) (*Result, error) {
	if msg == nil {
		return nil, fmt.Errorf("message is nil")
	}
	start := time.Now()

	run := nodes.NewRun(msg, p.cfg.Memories, p.cfg.Pipeline.RecentContextLimit)
	out, err := p.runnable.Invoke(ctx, run, compose.WithCallbacks(observers.NewStageCallbacks()))
	if err != nil {
		return nil, fmt.Errorf("preprocess message %s: %w", msg.ID, err)
	}

	a := out.Analysis
	a.Ambiguous = nlp.IsAmbiguous(msg.Text)
	out.State.SetValue("ambiguity", fmt.Sprintf("%t", a.Ambiguous))
	out.State.SetData(model.AnalysisKey, a)

	profile := out.Profiler.Summarize(PhaseTag, time.Since(start))
	if err := p.mirror(ctx, msg, a, profile); err != nil {
		return nil, err
	}

	logx.Info().
		Str("message_id", msg.ID.String()).
		Str("room_id", msg.RoomID.String()).
		Int("completed", len(a.Completed)).
		Int("failed", len(a.Failed)).
		Int("skipped", len(a.Skipped)).
		Dur("duration", profile.Total).
		Msg("Preprocessing complete")

	return &Result{Analysis: a, State: out.State, Profile: profile}, nil
}

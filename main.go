package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/conversations"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/debounce"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/embedding"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/executor"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/graph"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/lockhealth"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/repo"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/rhythm"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
	"github.com/Chative-core-poc-v1/preflight/internal/core"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
	pkgredis "github.com/Chative-core-poc-v1/preflight/pkg/redis"
)

// AppConfig defines all configurable parameters of the preflight demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Infrastructure
	Redis pkgredis.Config

	// Pipeline
	Pipeline  model.PipelineConfig
	Lock      model.LockConfig
	Embedding model.EmbeddingConfig
}

func main() {
	ctx := context.Background()
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load .env file: %v\n", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to process environment config: %v\n", err)
		os.Exit(1)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env, Level: cfg.LogLevel})

	rdb, err := cfg.Redis.New()
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to initialise Redis client")
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis successfully")

	// ====================================================
	// Shared state
	strategy, err := lockhealth.ParseStrategy(cfg.Lock.RecoveryStrategy)
	if err != nil {
		logx.Fatal().Err(err).Msg("Invalid lock recovery strategy")
	}
	monitor := lockhealth.NewMonitor(strategy)
	monitor.SetMaxRecoveries(cfg.Lock.MaxRecoveries)

	persister := repo.NewRedisSettingsPersister(rdb, cfg.Redis.KeyPrefix)
	store := settings.NewStore(monitor, settings.WithPersister(persister))
	if _, err := persister.Load(ctx, store); err != nil {
		logx.Warn().Err(err).Msg("Could not restore persisted settings")
	}

	memories := repo.NewRedisMemoryRepository(rdb, cfg.Redis.KeyPrefix, cfg.Pipeline.MemoryTTL)
	var (
		queue    model.EmbeddingQueue = memories
		embedder embedding.Embedder
	)
	if cfg.Embedding.APIKey != "" {
		e, err := embedding.NewGenAIEmbedder(ctx, cfg.Embedding)
		if err != nil {
			logx.Fatal().Err(err).Msg("Failed to build embedder")
		}
		embedder = e
		if cfg.Embedding.Mode == "inline" {
			queue = embedding.NewInlineQueue(e, memories)
		}
	}

	// ====================================================
	// Pipeline
	actions := model.ActionList{
		executor.SummarizeConfirm{},
		executor.AskClarify{Settings: store},
	}
	pre, err := graph.New(ctx, graph.Config{
		Settings:    store,
		Memories:    memories,
		Embeddings:  queue,
		Actions:     actions,
		Environment: env,
		Pipeline:    cfg.Pipeline,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build preprocessor")
	}

	manager, err := conversations.NewManager(conversations.Config{
		Preprocessor: pre,
		Executor:     executor.New(actions, repo.NewRedisActionResultStore(rdb, cfg.Redis.KeyPrefix, cfg.Pipeline.MemoryTTL)),
		Debouncer:    debounce.New(store, debounce.WithWindow(cfg.Pipeline.DebounceWindow)),
		Rhythm:       rhythm.New(monitor, rhythm.WithCapacity(cfg.Pipeline.RhythmWindowSize)),
		Memories:     memories,
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("Failed to build conversation manager")
	}

	testMessages := []struct {
		description string
		text        string
		debounce    bool
	}{
		{description: "Greeting", text: "Hello there!"},
		{description: "Fragment held by the debouncer", text: "I need help with...", debounce: true},
		{description: "Continuation merged with the fragment", text: "my billing account, it was charged twice", debounce: true},
		{description: "Long multi-part request", text: "Could you please compare the Pro and Team plans for our company, explain how migration works, and then tell me whether Acme Corp invoices can be split across departments?"},
		{description: "Short ambiguous follow-up", text: "fix it"},
	}

	room, user := uuid.New(), uuid.New()
	for i, test := range testMessages {
		logx.Info().Int("test", i+1).Str("description", test.description).Str("text", test.text).Msg("Processing message")
		if err := store.Set(ctx, debounce.EnabledKey, settings.Bool(test.debounce), false); err != nil {
			logx.Fatal().Err(err).Msg("Failed to toggle delayed reassessment")
		}

		out, err := manager.ProcessMessage(ctx, model.NewMessage(room, user, test.text))
		if err != nil {
			logx.Fatal().Err(err).Int("test", i+1).Msg("Failed to process message")
		}
		if out.Waiting {
			logx.Info().Int("test", i+1).Msg("Waiting for the rest of the message")
			continue
		}

		ev := logx.Info().
			Int("test", i+1).
			Bool("merged", out.Merged).
			Str("effective_text", out.Message.Text).
			Str("suggested_length", string(out.Rhythm.SuggestedLength)).
			Int("actions", len(out.Actions))
		if out.Result != nil {
			a := out.Result.Analysis
			ev = ev.Str("language", a.Language).
				Str("intent", string(a.Intent)).
				Strs("topics", a.Topics).
				Strs("entities", a.Entities).
				Bool("ambiguous", a.Ambiguous)
		}
		ev.Msg("Message processed")

		for _, res := range out.Actions {
			logx.Info().Str("action", res.ActionName).Str("text", res.Text).Msg("Action result")
		}
	}

	if embedder != nil && cfg.Embedding.Mode != "inline" {
		drainCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		n, err := embedding.Drain(drainCtx, memories, embedder, memories, 16)
		cancel()
		if err != nil {
			logx.Warn().Err(err).Msg("Embedding drain stopped early")
		}
		logx.Info().Int("embedded", n).Msg("Queued embeddings processed")
	}

	health := monitor.Health()
	logx.Info().
		Bool("healthy", health.IsHealthy).
		Uint64("poisoned", health.TotalPoisoned).
		Uint64("recoveries", health.Recoveries).
		Msg("All preflight tests completed")
}

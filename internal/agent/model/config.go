package model

import "time"

// ================ Config ================
type PipelineConfig struct {
	DebounceWindow     time.Duration `envconfig:"DEBOUNCE_WINDOW" default:"2s"`
	RhythmWindowSize   int           `envconfig:"RHYTHM_WINDOW_SIZE" default:"10"`
	KeywordLimit       int           `envconfig:"KEYWORD_LIMIT" default:"8"`
	TopicLimit         int           `envconfig:"TOPIC_LIMIT" default:"4"`
	EmbeddingPriority  int           `envconfig:"EMBEDDING_PRIORITY" default:"0"`
	RecentContextLimit int           `envconfig:"RECENT_CONTEXT_LIMIT" default:"5"`
	MemoryTTL          time.Duration `envconfig:"MEMORY_TTL" default:"24h"`
}

type LockConfig struct {
	RecoveryStrategy string `envconfig:"LOCK_RECOVERY_STRATEGY" default:"recover_and_continue"`
	MaxRecoveries    uint64 `envconfig:"LOCK_MAX_RECOVERIES" default:"0"`
}

type EmbeddingConfig struct {
	Mode    string `envconfig:"EMBEDDING_MODE" default:"queue"`
	Model   string `envconfig:"EMBEDDING_MODEL" default:"gemini-embedding-001"`
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`
}

// DefaultPipelineConfig mirrors the envconfig defaults for callers that do not load the environment.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DebounceWindow:     2 * time.Second,
		RhythmWindowSize:   10,
		KeywordLimit:       8,
		TopicLimit:         4,
		EmbeddingPriority:  0,
		RecentContextLimit: 5,
		MemoryTTL:          24 * time.Hour,
	}
}

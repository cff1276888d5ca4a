package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/profiler"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

// Stage names, in execution order.
const (
	NodeLanguage       = "language"
	NodeClassification = "classification"
	NodeTopicsKeywords = "topics_keywords"
	NodeEntities       = "entities"
	NodeComplexity     = "complexity"
	NodeDetectors      = "detectors"
	NodeEmbeddingQueue = "embedding_queue"
	NodePhonetic       = "phonetic"
)

// StageFunc does the work of one stage. It may only write its own slot of r.
type StageFunc func(ctx context.Context, r *Run) error

// FlagKey is the setting that disables a stage when false.
func FlagKey(stage string) string {
	return fmt.Sprintf("phase0:%s:enabled", stage)
}

// NewStageNode wraps fn with the stage flag, profiling and failure isolation.
// Only a poisoned settings store aborts the chain; every other error or panic
// is logged and the next stage runs.
func NewStageNode(name string, store *settings.Store, fn StageFunc) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, r *Run) (*Run, error) {
		enabled, err := store.GetBool(FlagKey(name), true)
		if err != nil {
			return r, err
		}
		if !enabled {
			r.Analysis.Skipped = append(r.Analysis.Skipped, name)
			return r, nil
		}

		h := r.Profiler.Start(name)
		err = runIsolated(ctx, name, r, fn)
		profiler.Finish(r.Profiler, h, err == nil)

		switch {
		case err == nil:
			r.Analysis.Completed = append(r.Analysis.Completed, name)
		case errors.Is(err, errx.ErrLockPoisoned):
			return r, err
		default:
			r.Analysis.Failed = append(r.Analysis.Failed, name)
			logx.Warn().
				Err(err).
				Str("node", name).
				Str("message_id", r.Message.ID.String()).
				Msg("Stage failed - continuing without its result")
		}
		return r, nil
	})
}

func runIsolated(ctx context.Context, name string, r *Run, fn StageFunc) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errx.Recovered(name, v)
		}
	}()
	return fn(ctx, r)
}

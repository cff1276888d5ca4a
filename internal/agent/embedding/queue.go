package embedding

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

// VectorStore records an embedding on a stored message.
type VectorStore interface {
	UpdateEmbedding(ctx context.Context, room, messageID uuid.UUID, vector []float32) error
}

// JobSource hands out queued embedding jobs, highest priority first.
type JobSource interface {
	PopEmbeddingJobs(ctx context.Context, n int64) ([]model.EmbeddingJob, error)
}

// InlineQueue embeds a message as soon as it is queued.
type InlineQueue struct {
	embedder Embedder
	store    VectorStore
}

func NewInlineQueue(embedder Embedder, store VectorStore) *InlineQueue {
	return &InlineQueue{embedder: embedder, store: store}
}

func (q *InlineQueue) QueueEmbeddingGeneration(ctx context.Context, msg *model.Message, _ int) error {
	return embedAndStore(ctx, q.embedder, q.store, msg.RoomID, msg.ID, msg.Text)
}

// Drain embeds queued jobs in batches until src is empty or ctx is done. A
// failed job is logged and skipped. It returns the number of stored vectors.
func Drain(ctx context.Context, src JobSource, embedder Embedder, store VectorStore, batch int64) (int, error) {
	if batch <= 0 {
		batch = 16
	}
	done := 0
	for {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		jobs, err := src.PopEmbeddingJobs(ctx, batch)
		if err != nil {
			return done, fmt.Errorf("pop embedding jobs: %w", err)
		}
		if len(jobs) == 0 {
			return done, nil
		}
		for _, job := range jobs {
			if err := embedAndStore(ctx, embedder, store, job.RoomID, job.MessageID, job.Text); err != nil {
				logx.Warn().Err(err).Str("message_id", job.MessageID.String()).Msg("Embedding job failed")
				continue
			}
			done++
		}
	}
}

func embedAndStore(ctx context.Context, embedder Embedder, store VectorStore, room, id uuid.UUID, text string) error {
	vector, err := embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	if err := store.UpdateEmbedding(ctx, room, id, vector); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	logx.Debug().Str("message_id", id.String()).Int("dims", len(vector)).Msg("Embedding stored")
	return nil
}

var _ model.EmbeddingQueue = (*InlineQueue)(nil)

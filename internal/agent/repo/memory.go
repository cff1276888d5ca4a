package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

// RedisMemoryRepository keeps room histories as JSON lists and embedding
// jobs in a sorted set served highest priority first.
type RedisMemoryRepository struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisMemoryRepository(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisMemoryRepository {
	return &RedisMemoryRepository{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (r *RedisMemoryRepository) memoriesKey(room uuid.UUID) string {
	return fmt.Sprintf("%sroom:%s:memories", r.prefix, room)
}

func (r *RedisMemoryRepository) queueKey() string {
	return r.prefix + "embedding:queue"
}

func (r *RedisMemoryRepository) AddMemory(ctx context.Context, msg *model.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		logx.Error().Err(err).Str("message_id", msg.ID.String()).Msg("failed to marshal message")
		return fmt.Errorf("marshal message: %w", err)
	}
	key := r.memoriesKey(msg.RoomID)

	if err := r.rdb.RPush(ctx, key, b).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to push memory to redis")
		return errx.WrapRedis(err)
	}
	return r.touch(ctx, key)
}

func (r *RedisMemoryRepository) touch(ctx context.Context, key string) error {
	if r.ttl <= 0 {
		return nil
	}
	ok, err := r.rdb.Expire(ctx, key, r.ttl).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
		return errx.WrapRedis(err)
	}
	if !ok {
		logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on memory key")
	}
	return nil
}

// GetMemories returns the newest query.Count messages, oldest first. A
// non-positive count returns the whole history.
func (r *RedisMemoryRepository) GetMemories(ctx context.Context, query model.MemoryQuery) ([]*model.Message, error) {
	key := r.memoriesKey(query.RoomID)
	start := int64(0)
	if query.Count > 0 {
		start = -int64(query.Count)
	}

	rows, err := r.rdb.LRange(ctx, key, start, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*model.Message{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load memories from redis")
		return nil, errx.WrapRedis(err)
	}

	msgs := make([]*model.Message, 0, len(rows))
	for i, s := range rows {
		var m model.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			logx.Error().Err(err).Str("key", key).Int("index", i).Msg("failed to unmarshal memory")
			return nil, fmt.Errorf("unmarshal memory at index %d: %w", i, err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, nil
}

func (r *RedisMemoryRepository) QueueEmbeddingGeneration(ctx context.Context, msg *model.Message, priority int) error {
	job := model.EmbeddingJob{
		MessageID: msg.ID,
		RoomID:    msg.RoomID,
		Text:      msg.Text,
		Priority:  priority,
		QueuedAt:  time.Now().UTC(),
	}
	b, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal embedding job: %w", err)
	}
	if err := r.rdb.ZAdd(ctx, r.queueKey(), redis.Z{Score: -float64(priority), Member: b}).Err(); err != nil {
		logx.Error().Err(err).Str("message_id", msg.ID.String()).Msg("failed to queue embedding job")
		return errx.WrapRedis(err)
	}
	logx.Debug().Str("message_id", msg.ID.String()).Int("priority", priority).Msg("Embedding job queued")
	return nil
}

// PopEmbeddingJobs removes and returns up to n jobs, highest priority first.
func (r *RedisMemoryRepository) PopEmbeddingJobs(ctx context.Context, n int64) ([]model.EmbeddingJob, error) {
	zs, err := r.rdb.ZPopMin(ctx, r.queueKey(), n).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errx.WrapRedis(err)
	}

	jobs := make([]model.EmbeddingJob, 0, len(zs))
	for _, z := range zs {
		raw, ok := z.Member.(string)
		if !ok {
			continue
		}
		var job model.EmbeddingJob
		if err := json.Unmarshal([]byte(raw), &job); err != nil {
			logx.Warn().Err(err).Msg("dropping malformed embedding job")
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// UpdateEmbedding stores vector on the remembered message messageID of room.
func (r *RedisMemoryRepository) UpdateEmbedding(ctx context.Context, room, messageID uuid.UUID, vector []float32) error {
	key := r.memoriesKey(room)
	rows, err := r.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return errx.WrapRedis(err)
	}

	for i, s := range rows {
		var m model.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			continue
		}
		if m.ID != messageID {
			continue
		}
		m.Embedding = vector
		b, err := json.Marshal(&m)
		if err != nil {
			return fmt.Errorf("marshal message: %w", err)
		}
		if err := r.rdb.LSet(ctx, key, int64(i), b).Err(); err != nil {
			return errx.WrapRedis(err)
		}
		return nil
	}
	return fmt.Errorf("memory %s not found in room %s", messageID, room)
}

var (
	_ model.MemoryRepository = (*RedisMemoryRepository)(nil)
	_ model.EmbeddingQueue   = (*RedisMemoryRepository)(nil)
)

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
)

type RedisActionResultStore struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisActionResultStore(rdb redis.Cmdable, prefix string, ttl time.Duration) *RedisActionResultStore {
	return &RedisActionResultStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisActionResultStore) key(messageID uuid.UUID) string {
	return fmt.Sprintf("%saction_results:%s", s.prefix, messageID)
}

func (s *RedisActionResultStore) SaveActionResults(ctx context.Context, messageID uuid.UUID, results []model.ActionResult) error {
	b, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal action results: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key(messageID), b, s.ttl).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

// LoadActionResults returns an empty list when nothing was stored.
func (s *RedisActionResultStore) LoadActionResults(ctx context.Context, messageID uuid.UUID) ([]model.ActionResult, error) {
	raw, err := s.rdb.Get(ctx, s.key(messageID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.ActionResult{}, nil
		}
		return nil, errx.WrapRedis(err)
	}

	var results []model.ActionResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("unmarshal action results: %w", err)
	}
	return results, nil
}

var _ model.ActionResultStore = (*RedisActionResultStore)(nil)

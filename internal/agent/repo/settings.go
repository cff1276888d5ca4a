package repo

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

// RedisSettingsPersister mirrors persisted settings into one Redis hash.
type RedisSettingsPersister struct {
	rdb redis.Cmdable
	key string
}

func NewRedisSettingsPersister(rdb redis.Cmdable, prefix string) *RedisSettingsPersister {
	return &RedisSettingsPersister{rdb: rdb, key: prefix + "settings"}
}

func (p *RedisSettingsPersister) SaveSetting(ctx context.Context, key string, raw []byte) error {
	if err := p.rdb.HSet(ctx, p.key, key, raw).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (p *RedisSettingsPersister) DeleteSetting(ctx context.Context, key string) error {
	if err := p.rdb.HDel(ctx, p.key, key).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

// Load restores every persisted setting into store. Entries that do not
// decode are skipped.
func (p *RedisSettingsPersister) Load(ctx context.Context, store *settings.Store) (int, error) {
	fields, err := p.rdb.HGetAll(ctx, p.key).Result()
	if err != nil {
		return 0, errx.WrapRedis(err)
	}

	entries := make(map[string]settings.Value, len(fields))
	for k, raw := range fields {
		var v settings.Value
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			logx.Warn().Err(err).Str("key", k).Msg("skipping malformed persisted setting")
			continue
		}
		entries[k] = v
	}
	if err := store.Restore(entries); err != nil {
		return 0, err
	}
	logx.Info().Int("settings", len(entries)).Msg("Settings restored from redis")
	return len(entries), nil
}

var _ model.SettingsPersister = (*RedisSettingsPersister)(nil)

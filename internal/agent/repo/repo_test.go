package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/lockhealth"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
)

const prefix = "test:"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestMemoriesRoundTrip(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	repo := NewRedisMemoryRepository(rdb, prefix, time.Hour)
	room, entity := uuid.New(), uuid.New()

	var sent []*model.Message
	for _, text := range []string{"first", "second", "third"} {
		msg := model.NewMessage(room, entity, text)
		sent = append(sent, msg)
		require.NoError(t, repo.AddMemory(ctx, msg))
	}
	require.NoError(t, repo.AddMemory(ctx, model.NewMessage(uuid.New(), entity, "elsewhere")))

	assert.Equal(t, time.Hour, mr.TTL(prefix+"room:"+room.String()+":memories"))

	all, err := repo.GetMemories(ctx, model.MemoryQuery{RoomID: room})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, sent[0].ID, all[0].ID)

	recent, err := repo.GetMemories(ctx, model.MemoryQuery{RoomID: room, Count: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "second", recent[0].Text)
	assert.Equal(t, "third", recent[1].Text)

	empty, err := repo.GetMemories(ctx, model.MemoryQuery{RoomID: uuid.New(), Count: 5})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEmbeddingQueueOrdersByPriority(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	repo := NewRedisMemoryRepository(rdb, prefix, 0)
	room := uuid.New()

	low := model.NewMessage(room, uuid.New(), "low")
	high := model.NewMessage(room, uuid.New(), "high")
	require.NoError(t, repo.QueueEmbeddingGeneration(ctx, low, 1))
	require.NoError(t, repo.QueueEmbeddingGeneration(ctx, high, 9))

	jobs, err := repo.PopEmbeddingJobs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, high.ID, jobs[0].MessageID)
	assert.Equal(t, 9, jobs[0].Priority)
	assert.Equal(t, low.ID, jobs[1].MessageID)

	jobs, err = repo.PopEmbeddingJobs(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestUpdateEmbedding(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()
	repo := NewRedisMemoryRepository(rdb, prefix, 0)
	room := uuid.New()

	a := model.NewMessage(room, uuid.New(), "a")
	b := model.NewMessage(room, uuid.New(), "b")
	require.NoError(t, repo.AddMemory(ctx, a))
	require.NoError(t, repo.AddMemory(ctx, b))

	require.NoError(t, repo.UpdateEmbedding(ctx, room, b.ID, []float32{0.5, 0.25}))

	msgs, err := repo.GetMemories(ctx, model.MemoryQuery{RoomID: room})
	require.NoError(t, err)
	assert.Empty(t, msgs[0].Embedding)
	assert.Equal(t, []float32{0.5, 0.25}, msgs[1].Embedding)

	require.Error(t, repo.UpdateEmbedding(ctx, room, uuid.New(), []float32{1}))
}

func TestSettingsPersisterForwardsAndLoads(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	persister := NewRedisSettingsPersister(rdb, prefix)
	store := settings.NewStore(lockhealth.NewMonitor(lockhealth.FailFast), settings.WithPersister(persister))

	require.NoError(t, store.Set(ctx, "ui:intent", settings.String("question"), true))
	require.NoError(t, store.Set(ctx, "ui:phase0_enabled", settings.Bool(false), true))
	require.NoError(t, store.Set(ctx, "local:only", settings.Int(3), false))

	assert.Equal(t, `"question"`, mr.HGet(prefix+"settings", "ui:intent"))
	assert.Equal(t, "false", mr.HGet(prefix+"settings", "ui:phase0_enabled"))
	assert.Empty(t, mr.HGet(prefix+"settings", "local:only"))

	require.NoError(t, store.Delete(ctx, "ui:phase0_enabled", true))
	assert.Empty(t, mr.HGet(prefix+"settings", "ui:phase0_enabled"))

	mr.HSet(prefix+"settings", "broken", "{not json")

	restored := settings.NewStore(nil)
	n, err := persister.Load(ctx, restored)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	intent, err := restored.GetString("ui:intent", "")
	require.NoError(t, err)
	assert.Equal(t, "question", intent)
}

func TestActionResultStore(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()
	store := NewRedisActionResultStore(rdb, prefix, time.Minute)
	id := uuid.New()

	results := []model.ActionResult{
		{ActionName: "ask_clarify", Text: "Could you say more?", Success: true},
		{ActionName: "summarize_confirm", Success: false, Error: "no topics"},
	}
	require.NoError(t, store.SaveActionResults(ctx, id, results))
	assert.Equal(t, time.Minute, mr.TTL(prefix+"action_results:"+id.String()))

	loaded, err := store.LoadActionResults(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, results, loaded)

	missing, err := store.LoadActionResults(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, missing)
}

package settings

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/lockhealth"
	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"
)

type recordingPersister struct {
	mu      sync.Mutex
	saved   map[string]string
	deleted []string
	err     error
}

func newRecordingPersister() *recordingPersister {
	return &recordingPersister{saved: make(map[string]string)}
}

func (p *recordingPersister) SaveSetting(_ context.Context, key string, raw []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saved[key] = string(raw)
	return nil
}

func (p *recordingPersister) DeleteSetting(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, key)
	return p.err
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(lockhealth.NewMonitor(lockhealth.FailFast))

	require.NoError(t, s.Set(ctx, "phase0:language", String("en"), false))

	v, err := s.Get("phase0:language")
	require.NoError(t, err)
	got, ok := v.AsString()
	require.True(t, ok)
	assert.Equal(t, "en", got)

	missing, err := s.Get("missing")
	require.NoError(t, err)
	assert.True(t, missing.IsNull())
}

func TestTypedGettersFallBackToDefault(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	require.NoError(t, s.Set(ctx, "ui:phase0_embeddings", String("yes"), false))
	require.NoError(t, s.Set(ctx, "count", Int(3), false))

	b, err := s.GetBool("ui:phase0_embeddings", false)
	require.NoError(t, err)
	assert.False(t, b)

	b, err = s.GetBool("unset", true)
	require.NoError(t, err)
	assert.True(t, b)

	n, err := s.GetInt64("count", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	str, err := s.GetString("count", "none")
	require.NoError(t, err)
	assert.Equal(t, "none", str)
}

func TestDeleteIsNull(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	require.NoError(t, s.Set(ctx, "k", Bool(true), false))
	require.NoError(t, s.Delete(ctx, "k", false))

	b, err := s.GetBool("k", false)
	require.NoError(t, err)
	assert.False(t, b)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.NotContains(t, snap, "k")
}

func TestPersistForwardsOnlyWhenAsked(t *testing.T) {
	ctx := context.Background()
	p := newRecordingPersister()
	s := NewStore(nil, WithPersister(p))

	require.NoError(t, s.Set(ctx, "memory-only", Bool(true), false))
	require.NoError(t, s.Set(ctx, "durable", Object(map[string]any{"a": 1}), true))
	require.NoError(t, s.Delete(ctx, "durable", true))

	assert.NotContains(t, p.saved, "memory-only")
	assert.JSONEq(t, `{"a":1}`, p.saved["durable"])
	assert.Equal(t, []string{"durable"}, p.deleted)
}

func TestPersisterFailureKeepsMemoryAuthoritative(t *testing.T) {
	ctx := context.Background()
	p := newRecordingPersister()
	p.err = errors.New("disk full")
	s := NewStore(nil, WithPersister(p))

	require.NoError(t, s.Set(ctx, "k", String("v"), true))

	got, err := s.GetString("k", "")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)
	require.NoError(t, s.Set(ctx, "a", Int(1), false))

	boom := errors.New("boom")
	err := s.Update(ctx, false, func(tx *Tx) error {
		tx.Set("a", Int(2))
		tx.Set("b", Int(2))
		assert.Equal(t, Int(2), tx.Get("a"))
		return boom
	})
	require.ErrorIs(t, err, boom)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, map[string]Value{"a": Int(1)}, snap)
}

func TestPanickingUpdatePoisonsStore(t *testing.T) {
	ctx := context.Background()
	monitor := lockhealth.NewMonitor(lockhealth.FailFast)
	s := NewStore(monitor)
	require.NoError(t, s.Set(ctx, "k", String("v"), false))

	err := s.Update(ctx, false, func(tx *Tx) error {
		panic("writer died")
	})
	require.Error(t, err)

	_, err = s.Get("k")
	require.ErrorIs(t, err, errx.ErrLockPoisoned)
	assert.True(t, errx.IsRetryable(err))

	monitor.SetStrategy(lockhealth.RecoverAndContinue)
	got, err := s.GetString("k", "")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	h := monitor.Health()
	assert.False(t, h.IsHealthy)
	assert.Equal(t, uint64(1), h.Recoveries)
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, "counter", Int(int64(i)), false))
		}(i)
		go func() {
			defer wg.Done()
			_, err := s.GetInt64("counter", -1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := s.GetInt64("counter", -1)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(0))
}

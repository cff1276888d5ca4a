package lockhealth

import (
	"errors"
	"sync"
	"testing"

	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMapGuard(m *Monitor) *Guard[map[string]int] {
	return NewGuard("counters", m, func() map[string]int { return map[string]int{} })
}

// poison leaves the guard poisoned after writing a partial update.
func poison(t *testing.T, g *Guard[map[string]int]) {
	t.Helper()
	err := g.Write(func(v *map[string]int) error {
		(*v)["partial"] = 1
		panic("stage failed mid-write")
	})
	require.Error(t, err)
	require.True(t, g.Poisoned())
}

func TestWritePanicPoisonsGuard(t *testing.T) {
	g := newMapGuard(NewMonitor(RecoverAndContinue))
	poison(t, g)

	var appErr *errx.AppError
	err := g.Write(func(v *map[string]int) error { panic("again") })
	require.True(t, errors.As(err, &appErr))
	assert.True(t, g.Poisoned())
}

func TestFailFastKeepsPoison(t *testing.T) {
	m := NewMonitor(FailFast)
	g := newMapGuard(m)
	poison(t, g)

	for i := 0; i < 3; i++ {
		err := g.Write(func(v *map[string]int) error { return nil })
		require.ErrorIs(t, err, errx.ErrLockPoisoned)
		assert.True(t, errx.IsRetryable(err))
	}
	err := g.Read(func(v map[string]int) error { return nil })
	require.ErrorIs(t, err, errx.ErrLockPoisoned)

	s := m.Summary()
	assert.Equal(t, uint64(4), s.TotalPoisoned)
	assert.Equal(t, uint64(4), s.Failures)
	assert.Zero(t, s.Recoveries)
	assert.False(t, m.Health().IsHealthy)
	assert.True(t, g.Poisoned())
}

func TestRecoverAndContinueKeepsValue(t *testing.T) {
	m := NewMonitor(RecoverAndContinue)
	g := newMapGuard(m)

	const n = 5
	for i := 0; i < n; i++ {
		poison(t, g)
		require.NoError(t, g.Write(func(v *map[string]int) error {
			(*v)["ok"]++
			return nil
		}))
	}

	require.NoError(t, g.Read(func(v map[string]int) error {
		assert.Equal(t, 1, v["partial"])
		assert.Equal(t, n, v["ok"])
		return nil
	}))

	s := m.Summary()
	assert.Equal(t, uint64(n), s.TotalPoisoned)
	assert.Equal(t, uint64(n), s.Recoveries)
	assert.Zero(t, s.Failures)
	assert.True(t, m.Health().IsHealthy)
	assert.False(t, s.LastPoisonedAt.IsZero())
}

func TestRecoverWithDefaultResetsValue(t *testing.T) {
	m := NewMonitor(RecoverWithDefault)
	g := newMapGuard(m)
	require.NoError(t, g.Write(func(v *map[string]int) error {
		(*v)["kept"] = 7
		return nil
	}))
	poison(t, g)

	require.NoError(t, g.Read(func(v map[string]int) error {
		assert.Empty(t, v)
		return nil
	}))
	assert.False(t, g.Poisoned())
	assert.Equal(t, uint64(1), m.Summary().Recoveries)
}

func TestStrategySwitchRecoversFailFastPoison(t *testing.T) {
	m := NewMonitor(FailFast)
	g := newMapGuard(m)
	poison(t, g)

	require.Error(t, g.Write(func(v *map[string]int) error { return nil }))
	m.SetStrategy(RecoverAndContinue)
	require.NoError(t, g.Write(func(v *map[string]int) error { return nil }))

	h := m.Health()
	assert.False(t, h.IsHealthy)
	assert.Equal(t, uint64(2), h.TotalPoisoned)
	assert.Equal(t, uint64(1), h.Failures)
	assert.Equal(t, uint64(1), h.Recoveries)
}

func TestMaxRecoveriesFallsBackToFailFast(t *testing.T) {
	m := NewMonitor(RecoverAndContinue)
	m.SetMaxRecoveries(2)
	g := newMapGuard(m)

	for i := 0; i < 2; i++ {
		poison(t, g)
		require.NoError(t, g.Write(func(v *map[string]int) error { return nil }))
	}
	poison(t, g)
	require.ErrorIs(t, g.Write(func(v *map[string]int) error { return nil }), errx.ErrLockPoisoned)

	s := m.Summary()
	assert.Equal(t, uint64(2), s.Recoveries)
	assert.Equal(t, uint64(1), s.Failures)
}

func TestWriteErrorDoesNotPoison(t *testing.T) {
	g := newMapGuard(NewMonitor(FailFast))
	want := errors.New("validation failed")

	err := g.Write(func(v *map[string]int) error { return want })
	assert.ErrorIs(t, err, want)
	assert.False(t, g.Poisoned())
}

func TestReadPanicDoesNotPoison(t *testing.T) {
	g := newMapGuard(NewMonitor(FailFast))

	err := g.Read(func(v map[string]int) error { panic("reader bug") })
	require.Error(t, err)
	assert.False(t, g.Poisoned())
}

func TestConcurrentWritersAfterPoison(t *testing.T) {
	m := NewMonitor(RecoverAndContinue)
	g := NewGuard("counter", m, func() int { return 0 })
	require.Error(t, g.Write(func(v *int) error { panic("boom") }))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Write(func(v *int) error {
				*v++
				return nil
			}))
		}()
	}
	wg.Wait()

	require.NoError(t, g.Read(func(v int) error {
		assert.Equal(t, 50, v)
		return nil
	}))
	assert.Equal(t, uint64(1), m.Summary().Recoveries)
}

func TestNilMonitorDefaultsToFailFast(t *testing.T) {
	g := NewGuard("orphan", nil, func() int { return 0 })
	assert.Equal(t, FailFast, g.Monitor().Strategy())
	assert.Equal(t, "orphan", g.Name())
}

package lockhealth

import (
	"testing"

	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	cases := []struct {
		in   string
		want Strategy
		err  bool
	}{
		{"fail_fast", FailFast, false},
		{"Recover_And_Continue", RecoverAndContinue, false},
		{"", RecoverAndContinue, false},
		{"recover_with_default", RecoverWithDefault, false},
		{"sometimes", FailFast, true},
	}
	for _, tc := range cases {
		got, err := ParseStrategy(tc.in)
		if tc.err {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		roundTrip, err := ParseStrategy(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, roundTrip)
	}
}

func TestSummaryRanksResources(t *testing.T) {
	m := NewMonitor(RecoverAndContinue)
	for _, name := range []string{"rhythm", "settings", "settings", "settings", "actions", "actions"} {
		_, err := m.onPoisoned(name)
		require.NoError(t, err)
	}

	s := m.Summary()
	assert.Equal(t, []ResourceCount{
		{Resource: "settings", Count: 3},
		{Resource: "actions", Count: 2},
		{Resource: "rhythm", Count: 1},
	}, s.MostPoisoned)
	assert.Equal(t, uint64(6), s.TotalPoisoned)
	assert.Equal(t, uint64(6), s.Recoveries)
}

func TestResetMetrics(t *testing.T) {
	m := NewMonitor(FailFast)
	m.SetMaxRecoveries(3)
	_, err := m.onPoisoned("settings")
	require.Error(t, err)
	require.False(t, m.Health().IsHealthy)

	m.ResetMetrics()

	h := m.Health()
	assert.True(t, h.IsHealthy)
	assert.Zero(t, h.TotalPoisoned)
	assert.Empty(t, h.MostPoisoned)
	assert.True(t, m.Summary().LastPoisonedAt.IsZero())
	assert.Equal(t, FailFast, m.Strategy())
}

func TestRecoveryCapReportsAppliedStrategy(t *testing.T) {
	m := NewMonitor(RecoverAndContinue)
	m.SetMaxRecoveries(1)

	got, err := m.onPoisoned("settings")
	require.NoError(t, err)
	assert.Equal(t, RecoverAndContinue, got)

	got, err = m.onPoisoned("settings")
	require.ErrorIs(t, err, errx.ErrLockPoisoned)
	assert.Equal(t, FailFast, got)
	assert.Contains(t, err.Error(), "strategy fail_fast")
	assert.NotContains(t, err.Error(), "recover_and_continue")
	assert.Equal(t, RecoverAndContinue, m.Strategy())
}

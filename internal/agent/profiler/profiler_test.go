package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	t     time.Time
	steps []time.Duration
}

func (c *stepClock) now() time.Time {
	if len(c.steps) > 0 {
		c.t = c.t.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return c.t
}

func TestFinishRecordsDuration(t *testing.T) {
	clock := &stepClock{t: time.Unix(0, 0), steps: []time.Duration{0, 5 * time.Millisecond}}
	p := New(WithClock(clock.now))

	h := p.Start("language")
	res := Finish(p, h, "en")

	assert.Equal(t, "language", res.Name)
	assert.Equal(t, "en", res.Value)
	assert.Equal(t, 5*time.Millisecond, res.Duration)
	require.Len(t, p.Entries(), 1)
}

func TestSummarizeKeepsTopThreeDescending(t *testing.T) {
	entries := []Entry{
		{Name: "language", Duration: 1 * time.Millisecond},
		{Name: "entities", Duration: 7 * time.Millisecond},
		{Name: "complexity", Duration: 3 * time.Millisecond},
		{Name: "phonetic", Duration: 9 * time.Millisecond},
		{Name: "detectors", Duration: 3 * time.Millisecond},
	}

	prof := Summarize("phase0", entries, 23*time.Millisecond)

	assert.Equal(t, "phase0", prof.Phase)
	assert.Equal(t, 23*time.Millisecond, prof.Total)
	assert.Equal(t, []Entry{
		{Name: "phonetic", Duration: 9 * time.Millisecond},
		{Name: "entities", Duration: 7 * time.Millisecond},
		{Name: "complexity", Duration: 3 * time.Millisecond},
	}, prof.Bottlenecks)
	assert.Equal(t, "language", entries[0].Name, "input must not be reordered")
}

func TestSummarizeFewerThanThree(t *testing.T) {
	prof := Summarize("phase0", []Entry{{Name: "a", Duration: time.Millisecond}}, time.Millisecond)
	assert.Len(t, prof.Bottlenecks, 1)

	prof = Summarize("phase0", nil, 0)
	assert.Empty(t, prof.Bottlenecks)
}

// Package profiler times pipeline stages for diagnostics.
// Results never gate correctness.
package profiler

import (
	"sort"
	"strings"
	"time"

	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

const topBottlenecks = 3

type Entry struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration"`
}

type StageResult[T any] struct {
	Name     string
	Value    T
	Duration time.Duration
}

type PhaseProfile struct {
	Phase       string        `json:"phase"`
	Total       time.Duration `json:"total"`
	Bottlenecks []Entry       `json:"bottlenecks"`
}

type Handle struct {
	name  string
	start time.Time
}

// Profiler collects entries for one pipeline run. It is not safe for concurrent use.
type Profiler struct {
	now     func() time.Time
	entries []Entry
}

type Option func(*Profiler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Profiler) {
		p.now = now
	}
}

func New(opts ...Option) *Profiler {
	p := &Profiler{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Profiler) Start(name string) Handle {
	return Handle{name: name, start: p.now()}
}

// Finish closes h, records its duration and wraps v.
func Finish[T any](p *Profiler, h Handle, v T) StageResult[T] {
	d := p.now().Sub(h.start)
	p.entries = append(p.entries, Entry{Name: h.name, Duration: d})
	return StageResult[T]{Name: h.name, Value: v, Duration: d}
}

// Entries returns the recorded entries in completion order.
func (p *Profiler) Entries() []Entry {
	return append([]Entry(nil), p.entries...)
}

// Summarize is shorthand for Summarize over the recorded entries.
func (p *Profiler) Summarize(phase string, total time.Duration) PhaseProfile {
	return Summarize(phase, p.entries, total)
}

// Summarize ranks entries by descending duration and keeps the top three.
func Summarize(phase string, entries []Entry, total time.Duration) PhaseProfile {
	ranked := append([]Entry(nil), entries...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Duration > ranked[j].Duration
	})
	if len(ranked) > topBottlenecks {
		ranked = ranked[:topBottlenecks]
	}

	names := make([]string, 0, len(ranked))
	for _, e := range ranked {
		names = append(names, e.Name+"="+e.Duration.String())
	}
	logx.Debug().
		Str("phase", phase).
		Dur("total", total).
		Str("top", strings.Join(names, ",")).
		Msg("Phase profile")

	return PhaseProfile{Phase: phase, Total: total, Bottlenecks: ranked}
}

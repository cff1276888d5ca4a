// Package lockhealth makes shared-state access resilient to a writer failing
// while it holds the exclusive side of a lock.
//
// Go mutexes have no poisoning, so the contract is simulated: every Guard is a
// small {Clean, Poisoned} state machine. A panic escaping a write critical
// section flips the guard to Poisoned; the next access consults the Monitor's
// active Strategy before touching the value again.
package lockhealth

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

// ResourceCount is one row of the poisoned-resource ranking.
type ResourceCount struct {
	Resource string
	Count    uint64
}

// Summary aggregates poisoning metrics.
type Summary struct {
	TotalPoisoned  uint64
	Recoveries     uint64
	Failures       uint64
	MostPoisoned   []ResourceCount
	LastPoisonedAt time.Time
}

// Health is derived from the counters on every call.
type Health struct {
	IsHealthy     bool
	TotalPoisoned uint64
	Recoveries    uint64
	Failures      uint64
	MostPoisoned  []ResourceCount
}

// Monitor holds the process-wide recovery strategy and poisoning metrics.
// A single Monitor is shared by every Guard of a runtime.
type Monitor struct {
	strategy      atomic.Int32
	maxRecoveries atomic.Uint64

	totalPoisoned atomic.Uint64
	recoveries    atomic.Uint64
	failures      atomic.Uint64

	mu             sync.Mutex
	perResource    map[string]uint64
	recoveredBy    map[string]uint64
	lastPoisonedAt time.Time
}

// NewMonitor returns a Monitor using the given strategy.
func NewMonitor(strategy Strategy) *Monitor {
	m := &Monitor{
		perResource: make(map[string]uint64),
		recoveredBy: make(map[string]uint64),
	}
	m.strategy.Store(int32(strategy))
	return m
}

func (m *Monitor) Strategy() Strategy {
	return Strategy(m.strategy.Load())
}

func (m *Monitor) SetStrategy(s Strategy) {
	m.strategy.Store(int32(s))
}

// SetMaxRecoveries caps recoveries per resource. Once a resource has been
// recovered n times, further poisonings are handled as FailFast. Zero disables the cap.
func (m *Monitor) SetMaxRecoveries(n uint64) {
	m.maxRecoveries.Store(n)
}

// onPoisoned records a poisoning encounter for resource and decides how to
// proceed. A non-nil error means the caller must abort.
func (m *Monitor) onPoisoned(resource string) (Strategy, error) {
	strategy := m.Strategy()
	limit := m.maxRecoveries.Load()

	m.totalPoisoned.Add(1)
	m.mu.Lock()
	m.perResource[resource]++
	m.lastPoisonedAt = time.Now()
	if strategy != FailFast && limit > 0 && m.recoveredBy[resource] >= limit {
		strategy = FailFast
	}
	if strategy != FailFast {
		m.recoveredBy[resource]++
	}
	m.mu.Unlock()

	log := logx.Component("lockhealth")
	if strategy == FailFast {
		m.failures.Add(1)
		log.Error().
			Str("resource", resource).
			Str("strategy", strategy.String()).
			Msg("Guarded resource is poisoned - aborting call")
		return strategy, errx.Poisoned(resource, strategy)
	}

	m.recoveries.Add(1)
	log.Warn().
		Str("resource", resource).
		Str("strategy", strategy.String()).
		Msg("Recovered poisoned resource - state may be inconsistent")
	return strategy, nil
}

func (m *Monitor) Summary() Summary {
	m.mu.Lock()
	ranked := make([]ResourceCount, 0, len(m.perResource))
	for name, n := range m.perResource {
		ranked = append(ranked, ResourceCount{Resource: name, Count: n})
	}
	last := m.lastPoisonedAt
	m.mu.Unlock()

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Resource < ranked[j].Resource
	})

	return Summary{
		TotalPoisoned:  m.totalPoisoned.Load(),
		Recoveries:     m.recoveries.Load(),
		Failures:       m.failures.Load(),
		MostPoisoned:   ranked,
		LastPoisonedAt: last,
	}
}

func (m *Monitor) Health() Health {
	s := m.Summary()
	return Health{
		IsHealthy:     s.Failures == 0,
		TotalPoisoned: s.TotalPoisoned,
		Recoveries:    s.Recoveries,
		Failures:      s.Failures,
		MostPoisoned:  s.MostPoisoned,
	}
}

// ResetMetrics zeroes all counters. The strategy and recovery cap are kept.
func (m *Monitor) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalPoisoned.Store(0)
	m.recoveries.Store(0)
	m.failures.Store(0)
	m.perResource = make(map[string]uint64)
	m.recoveredBy = make(map[string]uint64)
	m.lastPoisonedAt = time.Time{}
}

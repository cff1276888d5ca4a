package lockhealth

import (
	"sync"

	errx "github.com/Chative-core-poc-v1/preflight/internal/core/error"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

// Guard protects a value of type T with a reader/writer lock and a poison marker.
type Guard[T any] struct {
	name    string
	monitor *Monitor
	reset   func() T

	mu       sync.RWMutex
	value    T
	poisoned bool
}

// NewGuard creates a clean guard whose initial and default value come from init.
// A nil monitor gets a private FailFast monitor.
func NewGuard[T any](name string, monitor *Monitor, init func() T) *Guard[T] {
	if monitor == nil {
		monitor = NewMonitor(FailFast)
	}
	return &Guard[T]{
		name:    name,
		monitor: monitor,
		reset:   init,
		value:   init(),
	}
}

func (g *Guard[T]) Name() string {
	return g.name
}

func (g *Guard[T]) Monitor() *Monitor {
	return g.monitor
}

// Poisoned reports whether the last writer failed and no recovery has happened since.
func (g *Guard[T]) Poisoned() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.poisoned
}

// Write runs fn with exclusive access to the value. A panic inside fn poisons
// the guard and is returned as an error.
func (g *Guard[T]) Write(fn func(v *T) error) (err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.recoverLocked(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			g.poisoned = true
			logx.Error().Str("resource", g.name).Interface("panic", r).Msg("Writer panicked - resource poisoned")
			err = errx.Recovered(g.name, r)
		}
	}()
	return fn(&g.value)
}

// Read runs fn with shared access to the value. fn must not retain or mutate
// reference-typed contents. A panic inside fn is returned as an error and does
// not poison the guard.
func (g *Guard[T]) Read(fn func(v T) error) (err error) {
	g.mu.RLock()
	for g.poisoned {
		g.mu.RUnlock()
		g.mu.Lock()
		rerr := g.recoverLocked()
		g.mu.Unlock()
		if rerr != nil {
			return rerr
		}
		g.mu.RLock()
	}
	defer g.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			err = errx.Recovered(g.name, r)
		}
	}()
	return fn(g.value)
}

// recoverLocked applies the monitor's strategy when the guard is poisoned.
// The caller holds the write lock.
func (g *Guard[T]) recoverLocked() error {
	if !g.poisoned {
		return nil
	}
	strategy, err := g.monitor.onPoisoned(g.name)
	if err != nil {
		return err
	}
	if strategy == RecoverWithDefault {
		g.value = g.reset()
	}
	g.poisoned = false
	return nil
}

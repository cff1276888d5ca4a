// Package debounce merges rapid consecutive fragments from the same room into
// one effective message.
package debounce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

const (
	EnabledKey         = "AUTONOMOUS_DELAYED_REASSESSMENT"
	FallbackEnabledKey = "ui:delayed_reassessment"
	DefaultWindow      = 2 * time.Second

	trailingSeparators = "?.!- "
)

type Action int

const (
	// Passthrough: debouncing is disabled, process the text unchanged.
	Passthrough Action = iota
	// Wait: the text is held as pending; produce no response yet.
	Wait
	// Merged: the pending fragment and the new text were joined; process Text.
	Merged
)

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Merged:
		return "merged"
	default:
		return "passthrough"
	}
}

type Decision struct {
	Action Action
	// Text is the effective content when Action is Passthrough or Merged.
	Text string
	// Discarded holds a stale pending fragment that was overwritten.
	Discarded string
}

type Pending struct {
	At   time.Time
	Text string
}

type Debouncer struct {
	store  *settings.Store
	window time.Duration
	now    func() time.Time
}

type Option func(*Debouncer)

func WithWindow(d time.Duration) Option {
	return func(db *Debouncer) {
		if d > 0 {
			db.window = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(db *Debouncer) {
		db.now = now
	}
}

func New(store *settings.Store, opts ...Option) *Debouncer {
	db := &Debouncer{store: store, window: DefaultWindow, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

func tsKey(room uuid.UUID) string {
	return fmt.Sprintf("delayed:%s:ts", room)
}

func pendingKey(room uuid.UUID) string {
	return fmt.Sprintf("delayed:%s:pending", room)
}

// Enabled reads EnabledKey, then FallbackEnabledKey, defaulting to false.
func (db *Debouncer) Enabled() (bool, error) {
	v, err := db.store.Get(EnabledKey)
	if err != nil {
		return false, err
	}
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	return db.store.GetBool(FallbackEnabledKey, false)
}

// Observe decides what to do with text arriving in room. The pending lookup,
// merge and clear happen inside one settings write.
func (db *Debouncer) Observe(ctx context.Context, room uuid.UUID, text string) (Decision, error) {
	enabled, err := db.Enabled()
	if err != nil {
		return Decision{}, err
	}
	if !enabled {
		return Decision{Action: Passthrough, Text: text}, nil
	}

	now := db.now()
	var decision Decision
	err = db.store.Update(ctx, false, func(tx *settings.Tx) error {
		prev, ok := pendingFrom(tx, room)
		switch {
		case ok && now.Sub(prev.At) <= db.window:
			tx.Delete(tsKey(room))
			tx.Delete(pendingKey(room))
			decision = Decision{Action: Merged, Text: Merge(prev.Text, text)}
		case ok:
			tx.Set(tsKey(room), settings.Int(now.UnixMilli()))
			tx.Set(pendingKey(room), settings.String(text))
			decision = Decision{Action: Wait, Discarded: prev.Text}
		default:
			tx.Set(tsKey(room), settings.Int(now.UnixMilli()))
			tx.Set(pendingKey(room), settings.String(text))
			decision = Decision{Action: Wait}
		}
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	logx.Debug().
		Str("room_id", room.String()).
		Str("action", decision.Action.String()).
		Bool("discarded", decision.Discarded != "").
		Msg("Delayed reassessment")
	return decision, nil
}

// Pending returns the held fragment for room, if any.
func (db *Debouncer) Pending(room uuid.UUID) (Pending, bool, error) {
	var (
		p  Pending
		ok bool
	)
	err := db.store.View(func(tx *settings.Tx) error {
		p, ok = pendingFrom(tx, room)
		return nil
	})
	return p, ok, err
}

// Clear drops any held fragment for room.
func (db *Debouncer) Clear(ctx context.Context, room uuid.UUID) error {
	return db.store.Update(ctx, false, func(tx *settings.Tx) error {
		tx.Delete(tsKey(room))
		tx.Delete(pendingKey(room))
		return nil
	})
}

func pendingFrom(tx *settings.Tx, room uuid.UUID) (Pending, bool) {
	ms, ok := tx.Get(tsKey(room)).AsInt64()
	if !ok {
		return Pending{}, false
	}
	text, ok := tx.Get(pendingKey(room)).AsString()
	if !ok {
		return Pending{}, false
	}
	return Pending{At: time.UnixMilli(ms), Text: text}, true
}

// Merge joins two fragments with a single space after dropping trailing
// punctuation from a and surrounding whitespace from b.
func Merge(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return strings.TrimRight(a, trailingSeparators) + " " + strings.TrimSpace(b)
}

package rhythm

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/lockhealth"
)

const (
	ResourceName    = "rhythm"
	DefaultCapacity = 10
)

type Length string

const (
	Terse    Length = "terse"
	Brief    Length = "brief"
	Detailed Length = "detailed"
	Moderate Length = "moderate"
)

// Rhythm is a snapshot of a room's pacing handed to prompt assembly.
type Rhythm struct {
	AvgLength       float64  `json:"avg_length"`
	Velocity        float64  `json:"velocity"`
	RecentTopics    []string `json:"recent_topics,omitempty"`
	SuggestedLength Length   `json:"suggested_response_length"`
}

type sample struct {
	at     time.Time
	length int
}

type Tracker struct {
	guard    *lockhealth.Guard[map[uuid.UUID][]sample]
	capacity int
	now      func() time.Time
}

type Option func(*Tracker)

func WithCapacity(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.capacity = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func New(monitor *lockhealth.Monitor, opts ...Option) *Tracker {
	t := &Tracker{
		guard: lockhealth.NewGuard(ResourceName, monitor, func() map[uuid.UUID][]sample {
			return make(map[uuid.UUID][]sample)
		}),
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update appends (now, rune length of text) to the room window, evicting the
// oldest sample past capacity, and returns the derived rhythm.
func (t *Tracker) Update(room uuid.UUID, text string, topics []string) (Rhythm, error) {
	s := sample{at: t.now(), length: utf8.RuneCountInString(text)}
	var r Rhythm
	err := t.guard.Write(func(rooms *map[uuid.UUID][]sample) error {
		window := append((*rooms)[room], s)
		if over := len(window) - t.capacity; over > 0 {
			window = append([]sample(nil), window[over:]...)
		}
		(*rooms)[room] = window
		r = derive(window)
		return nil
	})
	if err != nil {
		return Rhythm{}, err
	}
	r.RecentTopics = append([]string(nil), topics...)
	return r, nil
}

// Current derives the rhythm of room without recording a sample.
func (t *Tracker) Current(room uuid.UUID) (Rhythm, error) {
	var r Rhythm
	err := t.guard.Read(func(rooms map[uuid.UUID][]sample) error {
		r = derive(rooms[room])
		return nil
	})
	return r, err
}

// Forget drops the window of room.
func (t *Tracker) Forget(room uuid.UUID) error {
	return t.guard.Write(func(rooms *map[uuid.UUID][]sample) error {
		delete(*rooms, room)
		return nil
	})
}

func derive(window []sample) Rhythm {
	var r Rhythm
	if len(window) == 0 {
		r.SuggestedLength = Suggest(0, 0)
		return r
	}

	total := 0
	for _, s := range window {
		total += s.length
	}
	r.AvgLength = float64(total) / float64(len(window))

	if len(window) >= 2 {
		span := window[len(window)-1].at.Sub(window[0].at).Seconds()
		if span > 0 {
			r.Velocity = float64(len(window)) / (span / 60)
		}
	}
	r.SuggestedLength = Suggest(r.Velocity, r.AvgLength)
	return r
}

// Suggest maps velocity (messages per minute) and average length to a response length.
func Suggest(velocity, avgLength float64) Length {
	switch {
	case velocity > 5:
		return Terse
	case velocity > 2:
		return Brief
	case avgLength > 300:
		return Detailed
	default:
		return Moderate
	}
}

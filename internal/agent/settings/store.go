// Package settings is the process-wide blackboard: a guarded map from free-form
// keys to tagged values that every pipeline component reads and writes.
package settings

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/lockhealth"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

const ResourceName = "settings"

type Store struct {
	guard     *lockhealth.Guard[map[string]Value]
	persister model.SettingsPersister
}

type Option func(*Store)

// WithPersister forwards persist=true writes to p.
func WithPersister(p model.SettingsPersister) Option {
	return func(s *Store) {
		s.persister = p
	}
}

func NewStore(monitor *lockhealth.Monitor, opts ...Option) *Store {
	s := &Store{
		guard: lockhealth.NewGuard(ResourceName, monitor, func() map[string]Value {
			return make(map[string]Value)
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the value for key. Absent keys read as null.
func (s *Store) Get(key string) (Value, error) {
	var out Value
	err := s.guard.Read(func(m map[string]Value) error {
		out = m[key]
		return nil
	})
	return out, err
}

// GetBool returns def when the key is unset or not a bool.
func (s *Store) GetBool(key string, def bool) (bool, error) {
	v, err := s.Get(key)
	if err != nil {
		return def, err
	}
	if b, ok := v.AsBool(); ok {
		return b, nil
	}
	return def, nil
}

func (s *Store) GetString(key string, def string) (string, error) {
	v, err := s.Get(key)
	if err != nil {
		return def, err
	}
	if str, ok := v.AsString(); ok {
		return str, nil
	}
	return def, nil
}

func (s *Store) GetInt64(key string, def int64) (int64, error) {
	v, err := s.Get(key)
	if err != nil {
		return def, err
	}
	if i, ok := v.AsInt64(); ok {
		return i, nil
	}
	return def, nil
}

// Set stores value under key. persist only controls whether the write is also
// forwarded to the persister; the in-memory effect is the same.
func (s *Store) Set(ctx context.Context, key string, value Value, persist bool) error {
	return s.Update(ctx, persist, func(tx *Tx) error {
		tx.Set(key, value)
		return nil
	})
}

// Delete sets key to null.
func (s *Store) Delete(ctx context.Context, key string, persist bool) error {
	return s.Set(ctx, key, Null(), persist)
}

// Update runs fn inside one write critical section. Writes made through tx are
// applied only when fn returns nil.
func (s *Store) Update(ctx context.Context, persist bool, fn func(tx *Tx) error) error {
	var written map[string]Value
	err := s.guard.Write(func(m *map[string]Value) error {
		tx := &Tx{base: *m, writes: make(map[string]Value)}
		if err := fn(tx); err != nil {
			return err
		}
		for k, v := range tx.writes {
			if v.IsNull() {
				delete(*m, k)
				continue
			}
			(*m)[k] = v
		}
		written = tx.writes
		return nil
	})
	if err != nil {
		return err
	}
	if persist {
		s.flush(ctx, written)
	}
	return nil
}

// View runs fn under the shared lock. Writes made through tx are discarded.
func (s *Store) View(fn func(tx *Tx) error) error {
	return s.guard.Read(func(m map[string]Value) error {
		return fn(&Tx{base: m, writes: make(map[string]Value)})
	})
}

// Snapshot copies the current contents.
func (s *Store) Snapshot() (map[string]Value, error) {
	var out map[string]Value
	err := s.guard.Read(func(m map[string]Value) error {
		out = maps.Clone(m)
		return nil
	})
	return out, err
}

// Restore loads entries without forwarding them to the persister.
func (s *Store) Restore(entries map[string]Value) error {
	return s.Update(context.Background(), false, func(tx *Tx) error {
		for k, v := range entries {
			tx.Set(k, v)
		}
		return nil
	})
}

func (s *Store) Monitor() *lockhealth.Monitor {
	return s.guard.Monitor()
}

func (s *Store) flush(ctx context.Context, written map[string]Value) {
	if s.persister == nil {
		return
	}
	for key, v := range written {
		var err error
		if v.IsNull() {
			err = s.persister.DeleteSetting(ctx, key)
		} else {
			var raw []byte
			raw, err = json.Marshal(v)
			if err == nil {
				err = s.persister.SaveSetting(ctx, key, raw)
			}
		}
		if err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("Failed to persist setting")
		}
	}
}

// Tx is a view of the store inside Update. It must not escape fn.
type Tx struct {
	base   map[string]Value
	writes map[string]Value
}

func (tx *Tx) Get(key string) Value {
	if v, ok := tx.writes[key]; ok {
		return v
	}
	return tx.base[key]
}

func (tx *Tx) Set(key string, value Value) {
	tx.writes[key] = value
}

func (tx *Tx) Delete(key string) {
	tx.writes[key] = Null()
}

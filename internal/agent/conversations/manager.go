// Package conversations sequences incoming messages per room through
// debouncing, preprocessing, action execution and rhythm tracking.
package conversations

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/debounce"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/executor"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/graph"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/rhythm"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

type Config struct {
	Preprocessor *graph.Preprocessor
	Executor     *executor.Executor
	Debouncer    *debounce.Debouncer
	Rhythm       *rhythm.Tracker
	// Memories, when set, receives every arriving message before it is processed.
	Memories model.MemoryRepository
}

// Outcome describes what happened to one arriving message.
type Outcome struct {
	// Waiting is true when the message was held by the debouncer.
	Waiting bool
	// Merged is true when Message combines a held fragment with the arrival.
	Merged bool
	// Message is the effective message that was processed.
	Message *model.Message
	Result  *graph.Result
	Actions []model.ActionResult
	Rhythm  rhythm.Rhythm
}

type Manager struct {
	cfg Config

	mu    sync.Mutex
	rooms map[uuid.UUID]*roomLock
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Preprocessor == nil {
		return nil, fmt.Errorf("preprocessor is nil")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is nil")
	}
	if cfg.Rhythm == nil {
		return nil, fmt.Errorf("rhythm tracker is nil")
	}
	return &Manager{cfg: cfg, rooms: make(map[uuid.UUID]*roomLock)}, nil
}

func (m *Manager) lockRoom(room uuid.UUID) func() {
	m.mu.Lock()
	l, ok := m.rooms[room]
	if !ok {
		l = &roomLock{}
		m.rooms[room] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.rooms, room)
		}
		m.mu.Unlock()
	}
}

// ProcessMessage runs msg through the pipeline. Messages of the same room are
// processed one at a time in arrival order; different rooms run concurrently.
// The room rhythm is updated for every arrival, including failed ones.
func (m *Manager) ProcessMessage(ctx context.Context, msg *model.Message) (out *Outcome, err error) {
	if msg == nil {
		return nil, fmt.Errorf("message is nil")
	}
	unlock := m.lockRoom(msg.RoomID)
	defer unlock()

	out = &Outcome{Message: msg}
	defer func() {
		var topics []string
		if out != nil && out.Result != nil {
			topics = out.Result.Analysis.Topics
		}
		r, rerr := m.cfg.Rhythm.Update(msg.RoomID, msg.Text, topics)
		if rerr != nil {
			logx.Error().Err(rerr).Str("room_id", msg.RoomID.String()).Msg("Error updating conversation rhythm")
			if err == nil {
				out, err = nil, fmt.Errorf("update rhythm: %w", rerr)
			}
			return
		}
		if out != nil {
			out.Rhythm = r
		}
	}()

	if m.cfg.Memories != nil {
		if err := m.cfg.Memories.AddMemory(ctx, msg); err != nil {
			logx.Warn().Err(err).Str("message_id", msg.ID.String()).Msg("Failed to store message memory")
		}
	}

	effective := msg
	if m.cfg.Debouncer != nil {
		decision, err := m.cfg.Debouncer.Observe(ctx, msg.RoomID, msg.Text)
		if err != nil {
			return nil, fmt.Errorf("debounce message %s: %w", msg.ID, err)
		}
		switch decision.Action {
		case debounce.Wait:
			out.Waiting = true
			return out, nil
		case debounce.Merged:
			effective = msg.WithText(decision.Text)
			out.Merged = true
			out.Message = effective
		}
	}

	state := model.NewTurnState()
	enabled, err := m.cfg.Preprocessor.Enabled()
	if err != nil {
		return nil, fmt.Errorf("read preprocessor flag: %w", err)
	}
	if enabled {
		res, err := m.cfg.Preprocessor.Process(ctx, effective)
		if err != nil {
			return nil, err
		}
		out.Result = res
		state = res.State
	}

	actions, err := m.cfg.Executor.ExecuteAll(ctx, effective, state)
	if err != nil {
		return nil, fmt.Errorf("execute actions for message %s: %w", effective.ID, err)
	}
	out.Actions = actions
	return out, nil
}

// ProcessBatch processes msgs concurrently, one goroutine each. Outcomes are
// returned in input order; the first error cancels the remaining work.
// Messages of one room are still serialized, in no defined order.
func (m *Manager) ProcessBatch(ctx context.Context, msgs []*model.Message) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(msgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, msg := range msgs {
		g.Go(func() error {
			out, err := m.ProcessMessage(gctx, msg)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

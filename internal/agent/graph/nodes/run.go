package nodes

import (
	"context"
	"fmt"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/profiler"
)

// Run is the value threaded through the stage chain for one message.
type Run struct {
	Message  *model.Message
	Analysis *model.Analysis
	State    *model.TurnState
	Profiler *profiler.Profiler

	memories    model.MemoryRepository
	recentLimit int
	recent      []*model.Message
	recentDone  bool
}

func NewRun(msg *model.Message, memories model.MemoryRepository, recentLimit int) *Run {
	return &Run{
		Message:     msg,
		Analysis:    &model.Analysis{},
		State:       model.NewTurnState(),
		Profiler:    profiler.New(),
		memories:    memories,
		recentLimit: recentLimit,
	}
}

// RecentContext returns earlier messages of the room, loading them once per run.
func (r *Run) RecentContext(ctx context.Context) ([]*model.Message, error) {
	if r.recentDone || r.memories == nil || r.recentLimit <= 0 {
		return r.recent, nil
	}
	msgs, err := r.memories.GetMemories(ctx, model.MemoryQuery{RoomID: r.Message.RoomID, Count: r.recentLimit + 1})
	if err != nil {
		return nil, fmt.Errorf("get memories: %w", err)
	}
	for _, m := range msgs {
		if m.ID != r.Message.ID {
			r.recent = append(r.recent, m)
		}
	}
	if len(r.recent) > r.recentLimit {
		r.recent = r.recent[len(r.recent)-r.recentLimit:]
	}
	r.recentDone = true
	return r.recent, nil
}

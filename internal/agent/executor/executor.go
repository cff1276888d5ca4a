// Package executor runs registered actions against a preprocessed message.
package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	logx "github.com/Chative-core-poc-v1/preflight/pkg/logger"
)

type Executor struct {
	source  model.ActionSource
	results model.ActionResultStore
}

// New builds an executor over source. A nil results store keeps results in memory.
func New(source model.ActionSource, results model.ActionResultStore) *Executor {
	if source == nil {
		source = model.ActionList(nil)
	}
	if results == nil {
		results = NewMemoryResultStore()
	}
	return &Executor{source: source, results: results}
}

// AvailableActions lists action names in registration order.
func (e *Executor) AvailableActions() []string {
	actions := e.source.Actions()
	names := make([]string, 0, len(actions))
	for _, a := range actions {
		names = append(names, a.Name())
	}
	return names
}

// ExecuteOne validates and runs the action at idx. An out of range index or a
// failed validation yields a nil result.
func (e *Executor) ExecuteOne(ctx context.Context, idx int, msg *model.Message, state *model.TurnState) (*model.ActionResult, error) {
	actions := e.source.Actions()
	if idx < 0 || idx >= len(actions) {
		return nil, nil
	}
	return run(ctx, actions[idx], msg, state)
}

// ExecuteAll evaluates every action in order and runs each one that validates.
// The first error aborts the pass; nothing is stored in that case.
func (e *Executor) ExecuteAll(ctx context.Context, msg *model.Message, state *model.TurnState) ([]model.ActionResult, error) {
	results := []model.ActionResult{}
	for _, action := range e.source.Actions() {
		res, err := run(ctx, action, msg, state)
		if err != nil {
			logx.Error().
				Err(err).
				Str("action", action.Name()).
				Str("message_id", msg.ID.String()).
				Msg("Action failed - aborting pass")
			return nil, err
		}
		if res != nil {
			results = append(results, *res)
		}
	}

	if err := e.results.SaveActionResults(ctx, msg.ID, results); err != nil {
		return nil, fmt.Errorf("save action results: %w", err)
	}
	logx.Debug().
		Str("message_id", msg.ID.String()).
		Int("results", len(results)).
		Msg("Actions executed")
	return results, nil
}

// Results returns what ExecuteAll stored for messageID.
func (e *Executor) Results(ctx context.Context, messageID uuid.UUID) ([]model.ActionResult, error) {
	return e.results.LoadActionResults(ctx, messageID)
}

func run(ctx context.Context, action model.Action, msg *model.Message, state *model.TurnState) (*model.ActionResult, error) {
	ok, err := action.Validate(ctx, msg, state)
	if err != nil {
		return nil, fmt.Errorf("validate action %s: %w", action.Name(), err)
	}
	if !ok {
		return nil, nil
	}

	logx.Debug().Str("action", action.Name()).Msg("Executing action")
	opts := &model.HandlerOptions{Custom: make(map[string]any)}
	res, err := action.Handle(ctx, msg, state, opts)
	if err != nil {
		return nil, fmt.Errorf("handle action %s: %w", action.Name(), err)
	}
	if res != nil && res.ActionName == "" {
		res.ActionName = action.Name()
	}
	return res, nil
}

package model

import (
	"context"

	"github.com/google/uuid"
)

// HandlerOptions is built fresh for every handler call; actions never share it.
type HandlerOptions struct {
	Custom map[string]any
}

type ActionResult struct {
	ActionName string         `json:"action_name"`
	Text       string         `json:"text,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
}

// Action is supplied by the plugin registry. A nil result with a nil error
// means the action ran but produced nothing.
type Action interface {
	Name() string
	Validate(ctx context.Context, msg *Message, state *TurnState) (bool, error)
	Handle(ctx context.Context, msg *Message, state *TurnState, opts *HandlerOptions) (*ActionResult, error)
}

// ActionSource yields registered actions in registration order.
type ActionSource interface {
	Actions() []Action
}

// ActionList is a static ActionSource.
type ActionList []Action

func (l ActionList) Actions() []Action {
	return l
}

type ActionResultStore interface {
	SaveActionResults(ctx context.Context, messageID uuid.UUID, results []ActionResult) error
	LoadActionResults(ctx context.Context, messageID uuid.UUID) ([]ActionResult, error)
}

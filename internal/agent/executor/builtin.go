package executor

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/nlp"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
)

const (
	ActionSummarizeConfirm = "summarize_confirm"
	ActionAskClarify       = "ask_clarify"
)

// SummarizeConfirm recaps long or complex messages before they are answered.
type SummarizeConfirm struct{}

func (SummarizeConfirm) Name() string { return ActionSummarizeConfirm }

func (SummarizeConfirm) Validate(_ context.Context, msg *model.Message, state *model.TurnState) (bool, error) {
	if c, ok := state.Data["complexity"].(nlp.Complexity); ok {
		return c.NeedsRecap, nil
	}
	return utf8.RuneCountInString(msg.Text) > nlp.RecapLength, nil
}

func (SummarizeConfirm) Handle(_ context.Context, msg *model.Message, state *model.TurnState, opts *model.HandlerOptions) (*model.ActionResult, error) {
	topics := state.Values["topics"]
	if topics == "" {
		topics = strings.Join(nlp.Keywords(msg.Text, nlp.DefaultTopicLimit), ", ")
	}
	opts.Custom["topics"] = topics
	return &model.ActionResult{
		Text:    fmt.Sprintf("Let me make sure I follow: you're asking about %s. Is that right?", topics),
		Data:    map[string]any{"topics": topics},
		Success: true,
	}, nil
}

// AskClarify asks a follow-up question when the message is ambiguous.
type AskClarify struct {
	Settings *settings.Store
}

func (AskClarify) Name() string { return ActionAskClarify }

// Validate prefers the analysis of this turn, then the mirrored setting,
// then a direct check of the text.
func (a AskClarify) Validate(_ context.Context, msg *model.Message, state *model.TurnState) (bool, error) {
	if an, ok := state.Data[model.AnalysisKey].(*model.Analysis); ok {
		return an.Ambiguous, nil
	}
	if a.Settings != nil {
		v, err := a.Settings.Get("ui:ambiguity")
		if err != nil {
			return false, err
		}
		if b, ok := v.AsBool(); ok {
			return b, nil
		}
	}
	return nlp.IsAmbiguous(msg.Text), nil
}

func (AskClarify) Handle(_ context.Context, msg *model.Message, _ *model.TurnState, _ *model.HandlerOptions) (*model.ActionResult, error) {
	return &model.ActionResult{
		Text:    fmt.Sprintf("Could you tell me a bit more about %q?", strings.TrimSpace(msg.Text)),
		Success: true,
	}, nil
}

package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chative-core-poc-v1/preflight/internal/agent/model"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/nlp"
	"github.com/Chative-core-poc-v1/preflight/internal/agent/settings"
)

type stubAction struct {
	name        string
	valid       bool
	validateErr error
	handleErr   error
	result      *model.ActionResult

	calls []*model.HandlerOptions
}

func (a *stubAction) Name() string { return a.name }

func (a *stubAction) Validate(context.Context, *model.Message, *model.TurnState) (bool, error) {
	return a.valid, a.validateErr
}

func (a *stubAction) Handle(_ context.Context, _ *model.Message, _ *model.TurnState, opts *model.HandlerOptions) (*model.ActionResult, error) {
	a.calls = append(a.calls, opts)
	opts.Custom[a.name] = true
	if a.handleErr != nil {
		return nil, a.handleErr
	}
	return a.result, nil
}

func newMessage(text string) *model.Message {
	return model.NewMessage(uuid.New(), uuid.New(), text)
}

func TestExecuteAllRunsEveryValidAction(t *testing.T) {
	ctx := context.Background()
	a := &stubAction{name: "a", valid: true, result: &model.ActionResult{Text: "from a", Success: true}}
	b := &stubAction{name: "b", valid: false, result: &model.ActionResult{Text: "from b"}}
	c := &stubAction{name: "c", valid: true, result: &model.ActionResult{ActionName: "custom", Text: "from c"}}
	d := &stubAction{name: "d", valid: true}
	ex := New(model.ActionList{a, b, c, d}, nil)
	msg := newMessage("hi")

	results, err := ex.ExecuteAll(ctx, msg, model.NewTurnState())
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ActionName)
	assert.Equal(t, "custom", results[1].ActionName)
	assert.Empty(t, b.calls)
	assert.Len(t, d.calls, 1)

	stored, err := ex.Results(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, results, stored)
}

func TestExecuteAllGivesEachHandlerFreshOptions(t *testing.T) {
	a := &stubAction{name: "a", valid: true}
	b := &stubAction{name: "b", valid: true}
	ex := New(model.ActionList{a, b}, nil)

	_, err := ex.ExecuteAll(context.Background(), newMessage("hi"), model.NewTurnState())
	require.NoError(t, err)

	require.Len(t, a.calls, 1)
	require.Len(t, b.calls, 1)
	assert.NotSame(t, a.calls[0], b.calls[0])
	assert.NotContains(t, b.calls[0].Custom, "a")
}

func TestExecuteAllAbortsOnError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("send failed")
	first := &stubAction{name: "first", valid: true, result: &model.ActionResult{Text: "ok"}}
	failing := &stubAction{name: "failing", valid: true, handleErr: boom}
	after := &stubAction{name: "after", valid: true}
	ex := New(model.ActionList{first, failing, after}, nil)
	msg := newMessage("hi")

	results, err := ex.ExecuteAll(ctx, msg, model.NewTurnState())
	require.ErrorIs(t, err, boom)
	assert.Nil(t, results)
	assert.Empty(t, after.calls)

	stored, err := ex.Results(ctx, msg.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestExecuteAllPropagatesValidateError(t *testing.T) {
	boom := errors.New("bad state")
	ex := New(model.ActionList{&stubAction{name: "v", validateErr: boom}}, nil)

	_, err := ex.ExecuteAll(context.Background(), newMessage("hi"), model.NewTurnState())
	require.ErrorIs(t, err, boom)
}

func TestExecuteOne(t *testing.T) {
	ctx := context.Background()
	valid := &stubAction{name: "valid", valid: true, result: &model.ActionResult{Text: "done"}}
	invalid := &stubAction{name: "invalid"}
	ex := New(model.ActionList{valid, invalid}, nil)

	res, err := ex.ExecuteOne(ctx, 0, newMessage("hi"), model.NewTurnState())
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "valid", res.ActionName)

	res, err = ex.ExecuteOne(ctx, 1, newMessage("hi"), model.NewTurnState())
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = ex.ExecuteOne(ctx, 5, newMessage("hi"), model.NewTurnState())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestAvailableActions(t *testing.T) {
	ex := New(model.ActionList{SummarizeConfirm{}, AskClarify{}}, nil)
	assert.Equal(t, []string{ActionSummarizeConfirm, ActionAskClarify}, ex.AvailableActions())
	assert.Empty(t, New(nil, nil).AvailableActions())
}

func TestSummarizeConfirm(t *testing.T) {
	ctx := context.Background()
	action := SummarizeConfirm{}

	short := newMessage("short question")
	ok, err := action.Validate(ctx, short, model.NewTurnState())
	require.NoError(t, err)
	assert.False(t, ok)

	long := newMessage(strings.Repeat("database migration planning ", 6))
	ok, err = action.Validate(ctx, long, model.NewTurnState())
	require.NoError(t, err)
	assert.True(t, ok)

	state := model.NewTurnState()
	state.SetData("complexity", nlp.Complexity{NeedsRecap: true})
	ok, err = action.Validate(ctx, short, state)
	require.NoError(t, err)
	assert.True(t, ok)

	state.SetValue("topics", "database, migration")
	res, err := action.Handle(ctx, long, state, &model.HandlerOptions{Custom: map[string]any{}})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "database, migration")
}

func TestAskClarify(t *testing.T) {
	ctx := context.Background()
	store := settings.NewStore(nil)
	action := AskClarify{Settings: store}

	ok, err := action.Validate(ctx, newMessage("fix it"), model.NewTurnState())
	require.NoError(t, err)
	assert.True(t, ok, "falls back to the text when nothing was analysed")

	require.NoError(t, store.Set(ctx, "ui:ambiguity", settings.Bool(false), false))
	ok, err = action.Validate(ctx, newMessage("fix it"), model.NewTurnState())
	require.NoError(t, err)
	assert.False(t, ok)

	state := model.NewTurnState()
	state.SetData(model.AnalysisKey, &model.Analysis{Ambiguous: true})
	ok, err = action.Validate(ctx, newMessage("fix it"), state)
	require.NoError(t, err)
	assert.True(t, ok)
}

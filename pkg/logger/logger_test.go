package logx

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/Chative-core-poc-v1/preflight/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init(LoggerOpts{Environment: core.Testing, Level: "disabled"}) })

	Debug().Msg("dropped")
	Info().Str("stage", "language").Msg("kept")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "language", entry["stage"])
}

func TestInitLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(LoggerOpts{Environment: core.Testing, Level: "disabled"}) })

	Info().Msg("info")
	Warn().Msg("warn")

	assert.NotContains(t, buf.String(), `"info"`)
	assert.Contains(t, buf.String(), `"warn"`)
}

func TestComponentTagsEvents(t *testing.T) {
	var buf bytes.Buffer
	Init(LoggerOpts{Environment: core.Production, Output: &buf})
	t.Cleanup(func() { Init(LoggerOpts{Environment: core.Testing, Level: "disabled"}) })

	l := Component("lockhealth")
	l.Warn().Msg("recovered")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "lockhealth", entry["component"])
	assert.Equal(t, "recovered", entry["message"])
}

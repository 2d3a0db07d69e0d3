package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONLevelFiltering(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	Init(Config{Level: WarnLevel, JSONOutput: true, Output: &buf})

	WithComponent("sync").Info().Msg("dropped")
	WithComponent("sync").Warn().Int("would_archive", 12).Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "sync", entry["component"])
	assert.Equal(t, "kept", entry["message"])
	assert.EqualValues(t, 12, entry["would_archive"])
}

func TestWithRunID(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	Init(Config{Level: "DEBUG", JSONOutput: true, Output: &buf})
	WithRunID("run-42").Debug().Msg("hello")

	assert.Contains(t, buf.String(), `"run_id":"run-42"`)
}

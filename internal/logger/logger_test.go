package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", "quantumvision")

	Log.Info().Msg("dropped")
	Log.Warn().Str("video_id", "abc").Msg("kept")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "quantumvision", entry["service"])
	assert.Equal(t, "abc", entry["video_id"])
	assert.Contains(t, entry, "time")
}

func TestInitWithWriter_FallsBackToInfo(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	InitWithWriter(&buf, "chatty", "quantumvision")

	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	Log.Debug().Msg("hidden")
	assert.Zero(t, buf.Len())
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONCarriesRunID(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "json", Level: "info", Out: &buf})
	log.Info().Str("stage", "aggregate").Msg("done")
	log.Debug().Msg("hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, log.RunID(), line["run_id"])
	assert.Equal(t, "aggregate", line["stage"])
	assert.Equal(t, "done", line["message"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Format: "console", Level: "debug", Out: &buf})
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.TraceLevel, ParseLevel("trace"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel(" ERROR "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
}

func TestNop(t *testing.T) {
	log := Nop()
	assert.NotEmpty(t, log.RunID())
	log.Error().Msg("discarded")
}

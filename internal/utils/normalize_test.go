package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Science   Fiction ", "Science Fiction"},
		{"horror", "horror"},
		{"", ""},
		{"Cafe\u0301", "Caf\u00e9"}, // decomposed accent is composed
		{"\tslow\nburn", "slow burn"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCategory(tt.in))
	}
}

func TestSuggestCategory(t *testing.T) {
	known := []string{"Science Fiction", "Horror", "Classics"}

	got, ok := SuggestCategory("horor", known)
	require.True(t, ok)
	assert.Equal(t, "Horror", got)

	got, ok = SuggestCategory("science fictoin", known)
	require.True(t, ok)
	assert.Equal(t, "Science Fiction", got)

	_, ok = SuggestCategory("gardening", known)
	assert.False(t, ok)

	_, ok = SuggestCategory("horror", nil)
	assert.False(t, ok)
}

func TestNewLoggerLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info().Msg("hidden")
	logger.Warn().Str("item", "Dune").Msg("shown")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Dune", entry["item"])
	assert.Contains(t, entry, "time")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "chatty", "json")

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
	logger.Info().Msg("shown")
	assert.NotEmpty(t, buf.String())
}

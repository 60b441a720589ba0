package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"warn", WARN},
		{"Warning", WARN},
		{"ERROR", ERROR},
		{"bogus", INFO},
		{"", INFO},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(LogConfig{Level: WARN, Format: Text, Output: &buf})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	l.Progress("always", nil)
	assert.Contains(t, buf.String(), "always")
}

func TestSkuSkippedJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(LogConfig{Level: DEBUG, Format: JSON, Output: &buf})

	l.SkuSkipped("ABC123", "db.r4.large", "unknown location", map[string]interface{}{
		"location": "Nowhere (Moon)",
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "Ignoring catalog SKU", entry["message"])

	data, ok := entry["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ABC123", data["sku"])
	assert.Equal(t, "db.r4.large", data["instance_type"])
	assert.Equal(t, "unknown location", data["reason"])
	assert.Equal(t, "Nowhere (Moon)", data["location"])
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	l := New(LogConfig{Level: INFO, Format: JSON, Output: &buf})

	l.Error("Amortization failed", assert.AnError)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["message"], assert.AnError.Error())
}

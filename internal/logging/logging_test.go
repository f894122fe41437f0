package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", LevelDebug},
		{"DEBUG", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"WARNING", LevelWarn},
		{"error", LevelError},
		{"unknown", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLevel(tt.input), "ParseLevel(%q)", tt.input)
	}
}

func TestValidLevel(t *testing.T) {
	assert.True(t, ValidLevel("Debug"))
	assert.True(t, ValidLevel("warning"))
	assert.False(t, ValidLevel("verbose"))
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &buf})

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown %d", 1)
	logger.Error("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown 1")
	assert.Contains(t, out, "[ERROR] shown 2")
}

func TestLogger_PrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelDebug, Output: &buf, Prefix: "dokd"})

	logger.WithComponent("terminal").WithField("pid", 42).Info("created")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "[INFO] dokd: created")
	assert.True(t, strings.HasSuffix(line, "{component=terminal, pid=42}"), line)
}

func TestLogger_DerivedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Output: &buf})
	child := logger.WithComponent("discovery")

	var other bytes.Buffer
	logger.SetOutput(&other)
	child.Info("from child")

	// Output is copied at derivation time; the mutex is shared.
	assert.Contains(t, buf.String(), "from child")
	assert.Empty(t, other.String())
}

func TestNop(t *testing.T) {
	logger := Nop()
	require.NotNil(t, logger)
	logger.Error("nothing happens")
	logger.WithComponent("x").Warn("still nothing")
}

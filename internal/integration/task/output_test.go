package task

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputStream_String(t *testing.T) {
	assert.Equal(t, "stdout", OutputStreamStdout.String())
	assert.Equal(t, "stderr", OutputStreamStderr.String())
	assert.Equal(t, "unknown", OutputStream(99).String())
}

func TestNewOutputProcessor(t *testing.T) {
	assert.Equal(t, 64*1024, NewOutputProcessor(0).bufferSize)
	assert.Equal(t, 1024, NewOutputProcessor(1024).bufferSize)
}

func TestOutputProcessor_Process(t *testing.T) {
	p := NewOutputProcessor(1024)

	var received []OutputLine
	err := p.Process(strings.NewReader("line1\r\nline2\nline3"), OutputStreamStdout, func(line OutputLine) {
		received = append(received, line)
	})
	require.NoError(t, err)
	require.Len(t, received, 3)

	for i, want := range []string{"line1", "line2", "line3"} {
		assert.Equal(t, want, received[i].Content)
		assert.Equal(t, OutputStreamStdout, received[i].Stream)
		assert.Equal(t, i+1, received[i].LineNumber)
		assert.False(t, received[i].Timestamp.IsZero())
	}
}

func TestOutputProcessor_LineNumbersSpanStreams(t *testing.T) {
	p := NewOutputProcessor(1024)

	require.NoError(t, p.Process(strings.NewReader("a\nb\n"), OutputStreamStdout, nil))
	require.NoError(t, p.Process(strings.NewReader("c\n"), OutputStreamStderr, nil))

	lines := p.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, 3, lines[2].LineNumber)
	assert.Equal(t, OutputStreamStderr, lines[2].Stream)
	assert.Equal(t, 3, p.LineCount())
	assert.Equal(t, "a\nb\nc", p.Content())
}

func TestOutputProcessor_LinesIsCopy(t *testing.T) {
	p := NewOutputProcessor(1024)
	require.NoError(t, p.Process(strings.NewReader("x\n"), OutputStreamStdout, nil))

	lines := p.Lines()
	lines[0].Content = "changed"

	assert.Equal(t, "x", p.Lines()[0].Content)
}

func TestOutputProcessor_LineTooLong(t *testing.T) {
	p := NewOutputProcessor(16)

	err := p.Process(strings.NewReader("short\n"+strings.Repeat("x", 64)+"\n"), OutputStreamStdout, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, p.LineCount())
}

package task

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"time"
)

// OutputStream identifies the source stream.
type OutputStream int

const (
	// OutputStreamStdout is standard output.
	OutputStreamStdout OutputStream = iota
	// OutputStreamStderr is standard error.
	OutputStreamStderr
)

// String returns the stream name.
func (s OutputStream) String() string {
	switch s {
	case OutputStreamStdout:
		return "stdout"
	case OutputStreamStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// OutputLine is a single line of task output.
type OutputLine struct {
	// Content is the line content without the newline.
	Content string

	// Stream identifies stdout or stderr.
	Stream OutputStream

	// Timestamp is when the line was received.
	Timestamp time.Time

	// LineNumber is the sequential line number across both streams (1-based).
	LineNumber int
}

// OutputProcessor splits task output into lines and keeps them.
type OutputProcessor struct {
	mu         sync.RWMutex
	lines      []OutputLine
	bufferSize int
	lineCount  int
}

// NewOutputProcessor creates an output processor whose longest accepted
// line is bufferSize bytes.
func NewOutputProcessor(bufferSize int) *OutputProcessor {
	if bufferSize <= 0 {
		bufferSize = 64 * 1024
	}
	return &OutputProcessor{
		lines:      make([]OutputLine, 0, 256),
		bufferSize: bufferSize,
	}
}

// Process reads r line by line, recording each line and passing it to
// callback. It returns the scanner error, if any.
func (p *OutputProcessor) Process(r io.Reader, stream OutputStream, callback func(OutputLine)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), p.bufferSize)

	for scanner.Scan() {
		p.mu.Lock()
		p.lineCount++
		line := OutputLine{
			Content:    strings.TrimSuffix(scanner.Text(), "\r"),
			Stream:     stream,
			Timestamp:  time.Now(),
			LineNumber: p.lineCount,
		}
		p.lines = append(p.lines, line)
		p.mu.Unlock()

		if callback != nil {
			callback(line)
		}
	}

	return scanner.Err()
}

// Lines returns a copy of all captured lines.
func (p *OutputProcessor) Lines() []OutputLine {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]OutputLine, len(p.lines))
	copy(result, p.lines)
	return result
}

// LineCount returns the number of lines processed.
func (p *OutputProcessor) LineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lineCount
}

// Content returns all output joined by newlines.
func (p *OutputProcessor) Content() string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	parts := make([]string, len(p.lines))
	for i, line := range p.lines {
		parts[i] = line.Content
	}
	return strings.Join(parts, "\n")
}

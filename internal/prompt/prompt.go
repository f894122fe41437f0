// Package prompt asks the user for free text.
//
// ShowInputBox distinguishes a cancelled prompt (ok == false) from an
// empty answer (ok == true, value == "").
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrNoTerminal is returned when a screen prompt has no terminal to draw on.
var ErrNoTerminal = errors.New("no terminal available")

// InputBoxOptions configures an input box.
type InputBoxOptions struct {
	// Prompt is the text shown above the input.
	Prompt string

	// PlaceHolder is shown while the input is empty.
	PlaceHolder string

	// Value is the initial input of screen prompts.
	Value string
}

// Prompter shows input boxes.
type Prompter interface {
	// ShowInputBox asks for a line of text. ok is false when the user
	// dismissed the prompt.
	ShowInputBox(ctx context.Context, opts InputBoxOptions) (value string, ok bool, err error)
}

// Default returns a screen input box when in is a terminal and a line
// prompter otherwise.
func Default(in *os.File, out io.Writer) Prompter {
	if in == nil {
		return &LinePrompter{Out: out}
	}
	if term.IsTerminal(int(in.Fd())) {
		return NewInputBox()
	}
	return &LinePrompter{In: in, Out: out}
}

// LinePrompter reads the answer as one line of input. End of input before
// any text cancels the prompt.
type LinePrompter struct {
	In  io.Reader
	Out io.Writer
}

type lineResult struct {
	value string
	ok    bool
	err   error
}

// ShowInputBox writes the prompt and reads one line.
func (p *LinePrompter) ShowInputBox(ctx context.Context, opts InputBoxOptions) (string, bool, error) {
	if p.In == nil {
		return "", false, nil
	}
	if p.Out != nil {
		label := opts.Prompt
		if opts.PlaceHolder != "" {
			label = fmt.Sprintf("%s (%s)", label, opts.PlaceHolder)
		}
		if _, err := fmt.Fprintf(p.Out, "%s: ", label); err != nil {
			return "", false, fmt.Errorf("write prompt: %w", err)
		}
	}

	results := make(chan lineResult, 1)
	go func() {
		line, err := readLine(p.In)
		switch {
		case err == io.EOF && line == "":
			results <- lineResult{}
		case err != nil && err != io.EOF:
			results <- lineResult{err: fmt.Errorf("read answer: %w", err)}
		default:
			results <- lineResult{value: strings.TrimRight(line, "\r\n"), ok: true}
		}
	}()

	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case r := <-results:
		return r.value, r.ok, r.err
	}
}

// readLine reads up to and including the next newline one byte at a time,
// leaving whatever follows unread for later consumers of r.
func readLine(r io.Reader) (string, error) {
	var line strings.Builder
	var buf [1]byte
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			line.WriteByte(buf[0])
			if buf[0] == '\n' {
				return line.String(), nil
			}
		}
		if err != nil {
			return line.String(), err
		}
	}
}

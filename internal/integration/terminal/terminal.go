package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// defaultBacklog is the output kept for a terminal that is not shown yet.
const defaultBacklog = 64 * 1024

// Session is an interactive shell session that accepts command text.
type Session interface {
	// ID returns the session's unique identifier.
	ID() string

	// Name returns the display name.
	Name() string

	// PID returns the shell process ID, or -1 if unknown.
	PID() int

	// SendText writes text to the shell, followed by a line terminator
	// when addNewLine is set.
	SendText(text string, addNewLine bool) error

	// Show brings the session to the foreground.
	Show() error

	// Done is closed when the shell exits.
	Done() <-chan struct{}

	// Close terminates the shell.
	Close() error
}

// Options configures a new terminal.
type Options struct {
	// Name is a human-readable name for the terminal.
	Name string

	// Shell is the shell executable.
	Shell string

	// Args are the shell launch arguments.
	Args []string

	// Env are additional environment variables.
	Env []string

	// WorkDir is the working directory for the shell.
	WorkDir string

	// Cols is the number of columns (default 80).
	Cols int

	// Rows is the number of rows (default 24).
	Rows int

	// Output receives shell output once the terminal is shown.
	// Defaults to os.Stdout.
	Output io.Writer

	// Backlog caps the output kept until the terminal is shown
	// (default 64 KiB).
	Backlog int

	// OnClose is called once with the shell's PID after it exits.
	OnClose func(pid int)
}

// Terminal is a shell running on a PTY.
type Terminal struct {
	id   string
	name string

	pty PTY
	cmd *exec.Cmd
	pid int

	mu      sync.Mutex
	output  io.Writer
	backlog []byte
	maxLog  int
	shown   bool

	done     chan struct{}
	exitCode atomic.Int32
	closed   atomic.Bool

	onClose func(pid int)
}

// New starts a shell on a new PTY.
func New(opts Options) (*Terminal, error) {
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
		if opts.Shell == "" {
			opts.Shell = "/bin/sh"
		}
	}
	if opts.Cols <= 0 {
		opts.Cols = 80
	}
	if opts.Rows <= 0 {
		opts.Rows = 24
	}
	if opts.Backlog <= 0 {
		opts.Backlog = defaultBacklog
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Name == "" {
		opts.Name = "terminal"
	}

	if _, err := exec.LookPath(opts.Shell); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrShellNotFound, opts.Shell)
	}

	cmd := exec.Command(opts.Shell, opts.Args...)
	cmd.Dir = opts.WorkDir
	cmd.Env = append(os.Environ(), opts.Env...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	pty, err := StartPTY(cmd, uint16(opts.Cols), uint16(opts.Rows))
	if err != nil {
		return nil, fmt.Errorf("start PTY: %w", err)
	}

	t := &Terminal{
		id:      uuid.New().String(),
		name:    opts.Name,
		pty:     pty,
		cmd:     cmd,
		pid:     cmd.Process.Pid,
		output:  opts.Output,
		maxLog:  opts.Backlog,
		done:    make(chan struct{}),
		onClose: opts.OnClose,
	}
	t.exitCode.Store(-1)

	go t.readLoop()

	return t, nil
}

// ID returns the terminal's unique identifier.
func (t *Terminal) ID() string {
	return t.id
}

// Name returns the terminal's display name.
func (t *Terminal) Name() string {
	return t.name
}

// PID returns the shell process ID.
func (t *Terminal) PID() int {
	return t.pid
}

// Write sends raw input to the shell.
func (t *Terminal) Write(data []byte) (int, error) {
	if t.closed.Load() {
		return 0, ErrTerminalClosed
	}
	select {
	case <-t.done:
		return 0, ErrTerminalClosed
	default:
	}
	return t.pty.Write(data)
}

// SendText writes text to the shell. A carriage return, the key a user
// presses to submit a line, is appended when addNewLine is set.
func (t *Terminal) SendText(text string, addNewLine bool) error {
	if addNewLine {
		text += "\r"
	}
	if _, err := t.Write([]byte(text)); err != nil {
		return fmt.Errorf("send text: %w", err)
	}
	return nil
}

// Show flushes the output collected so far and mirrors all further output
// to the configured writer.
func (t *Terminal) Show() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shown {
		return nil
	}
	t.shown = true

	if len(t.backlog) > 0 {
		_, err := t.output.Write(t.backlog)
		t.backlog = nil
		if err != nil {
			return fmt.Errorf("show terminal: %w", err)
		}
	}
	return nil
}

// Shown reports whether the terminal has been shown.
func (t *Terminal) Shown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shown
}

// Resize changes the terminal size.
func (t *Terminal) Resize(cols, rows int) error {
	if t.closed.Load() {
		return ErrTerminalClosed
	}
	if cols < 1 || rows < 1 {
		return ErrInvalidSize
	}
	if err := t.pty.Resize(uint16(cols), uint16(rows)); err != nil {
		return fmt.Errorf("resize PTY: %w", err)
	}
	return nil
}

// Close kills the shell and waits for the session to end.
func (t *Terminal) Close() error {
	if t.closed.Swap(true) {
		<-t.done
		return nil
	}

	if t.cmd.Process != nil {
		_ = t.cmd.Process.Kill()
	}
	err := t.pty.Close()

	<-t.done

	if err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("close PTY: %w", err)
	}
	return nil
}

// Done returns a channel that is closed when the shell exits.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// ExitCode returns the shell's exit code, or -1 while it is running.
func (t *Terminal) ExitCode() int {
	return int(t.exitCode.Load())
}

// IsRunning reports whether the shell is still running.
func (t *Terminal) IsRunning() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// readLoop copies PTY output until the shell goes away. Linux reports a
// hung-up PTY as EIO rather than EOF, so any read error ends the loop.
func (t *Terminal) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := t.pty.Read(buf)
		if n > 0 {
			t.emit(buf[:n])
		}
		if err != nil {
			break
		}
	}

	if err := t.cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.exitCode.Store(int32(exitErr.ExitCode()))
		}
	} else {
		t.exitCode.Store(0)
	}

	if !t.closed.Swap(true) {
		t.pty.Close()
	}

	if t.onClose != nil {
		t.onClose(t.pid)
	}
	close(t.done)
}

func (t *Terminal) emit(data []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.shown {
		_, _ = t.output.Write(data)
		return
	}

	t.backlog = append(t.backlog, data...)
	if over := len(t.backlog) - t.maxLog; over > 0 {
		t.backlog = append(t.backlog[:0], t.backlog[over:]...)
	}
}

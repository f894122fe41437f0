package terminal

import "errors"

// Sentinel errors for the terminal package.
var (
	// ErrTerminalClosed is returned when operations are attempted on a closed terminal.
	ErrTerminalClosed = errors.New("terminal is closed")

	// ErrInvalidSize is returned when terminal size is invalid.
	ErrInvalidSize = errors.New("invalid terminal size")

	// ErrPTYNotSupported is returned when PTY is not supported on this platform.
	ErrPTYNotSupported = errors.New("PTY not supported on this platform")

	// ErrShellNotFound is returned when the shell executable is not found.
	ErrShellNotFound = errors.New("shell not found")

	// ErrSlotClosed is returned when a terminal is requested from a closed slot.
	ErrSlotClosed = errors.New("terminal slot is closed")
)

package terminal

import (
	"os"
	"os/exec"
)

// PTY represents a pseudo-terminal.
type PTY interface {
	// File returns the PTY master file.
	File() *os.File

	// Read reads shell output.
	Read(p []byte) (n int, err error)

	// Write writes shell input.
	Write(p []byte) (n int, err error)

	// Resize changes the PTY size.
	Resize(cols, rows uint16) error

	// Close closes the PTY master.
	Close() error
}

// StartPTY starts cmd with a new PTY as its controlling terminal.
func StartPTY(cmd *exec.Cmd, cols, rows uint16) (PTY, error) {
	if cols == 0 || rows == 0 {
		return nil, ErrInvalidSize
	}
	return startPTY(cmd, cols, rows)
}

// masterPTY is the PTY master side shared by the Unix implementations.
type masterPTY struct {
	master *os.File
}

func (p *masterPTY) File() *os.File {
	return p.master
}

func (p *masterPTY) Read(buf []byte) (int, error) {
	return p.master.Read(buf)
}

func (p *masterPTY) Write(data []byte) (int, error) {
	return p.master.Write(data)
}

func (p *masterPTY) Resize(cols, rows uint16) error {
	return setWinSize(p.master, cols, rows)
}

func (p *masterPTY) Close() error {
	return p.master.Close()
}

// winSize is the structure used by TIOCSWINSZ.
type winSize struct {
	Row    uint16
	Col    uint16
	Xpixel uint16
	Ypixel uint16
}

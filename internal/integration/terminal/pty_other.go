//go:build !linux && !darwin

package terminal

import (
	"os"
	"os/exec"
)

// TODO: start sessions through ConPTY on Windows hosts.
func startPTY(cmd *exec.Cmd, cols, rows uint16) (PTY, error) {
	return nil, ErrPTYNotSupported
}

func setWinSize(f *os.File, cols, rows uint16) error {
	return ErrPTYNotSupported
}

//go:build linux || darwin

package terminal

import (
	"os"
	"os/exec"
	"syscall"
	"unsafe"
)

// startPTY opens a master/slave pair and starts cmd as a session leader
// with the slave as its controlling terminal.
func startPTY(cmd *exec.Cmd, cols, rows uint16) (PTY, error) {
	master, slave, err := openPTY()
	if err != nil {
		return nil, err
	}

	if err := setWinSize(master, cols, rows); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}

	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave

	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	if err := cmd.Start(); err != nil {
		master.Close()
		slave.Close()
		return nil, err
	}

	// The child holds its own copy.
	slave.Close()

	return &masterPTY{master: master}, nil
}

// openPTY opens a new PTY master/slave pair.
func openPTY() (*os.File, *os.File, error) {
	master, err := os.OpenFile("/dev/ptmx", os.O_RDWR, 0)
	if err != nil {
		return nil, nil, err
	}

	if err := unlockPT(master); err != nil {
		master.Close()
		return nil, nil, err
	}

	slavePath, err := ptsName(master)
	if err != nil {
		master.Close()
		return nil, nil, err
	}

	slave, err := os.OpenFile(slavePath, os.O_RDWR|syscall.O_NOCTTY, 0)
	if err != nil {
		master.Close()
		return nil, nil, err
	}

	return master, slave, nil
}

func ioctl(f *os.File, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// setWinSize sets the window size of the PTY.
func setWinSize(f *os.File, cols, rows uint16) error {
	ws := &winSize{Row: rows, Col: cols}
	return ioctl(f, syscall.TIOCSWINSZ, unsafe.Pointer(ws))
}

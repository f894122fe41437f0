//go:build darwin

package terminal

import (
	"bytes"
	"os"
	"unsafe"
)

// ioctl requests not exported by package syscall on macOS.
const (
	tiocptygrant = 0x20007454
	tiocptyunlk  = 0x20007452
	tiocptygname = 0x40807453
)

// unlockPT grants and unlocks the slave PTY.
func unlockPT(master *os.File) error {
	if err := ioctl(master, tiocptygrant, nil); err != nil {
		return err
	}
	return ioctl(master, tiocptyunlk, nil)
}

// ptsName returns the path of the slave PTY.
func ptsName(master *os.File) (string, error) {
	var name [128]byte
	if err := ioctl(master, tiocptygname, unsafe.Pointer(&name[0])); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(name[:], 0); i >= 0 {
		return string(name[:i]), nil
	}
	return string(name[:]), nil
}

//go:build linux

package terminal

import (
	"os"
	"strconv"
	"syscall"
	"unsafe"
)

// unlockPT unlocks the slave PTY.
func unlockPT(master *os.File) error {
	var unlock int32
	return ioctl(master, syscall.TIOCSPTLCK, unsafe.Pointer(&unlock))
}

// ptsName returns the path of the slave PTY.
func ptsName(master *os.File) (string, error) {
	var ptyno uint32
	if err := ioctl(master, syscall.TIOCGPTN, unsafe.Pointer(&ptyno)); err != nil {
		return "", err
	}
	return "/dev/pts/" + strconv.FormatUint(uint64(ptyno), 10), nil
}

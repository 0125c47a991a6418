//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package swatch

import "golang.org/x/sys/unix"

// isTerminalFd asks the kernel for the window size; only terminals have one.
func isTerminalFd(fd uintptr) bool {
	_, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ)
	return err == nil
}

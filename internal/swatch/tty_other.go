//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly || windows)

package swatch

func isTerminalFd(uintptr) bool { return false }

//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals end watch mode: Ctrl+C and the process-manager stop signal.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

//go:build windows

package main

import "os"

// shutdownSignals end watch mode. Windows only delivers os.Interrupt.
var shutdownSignals = []os.Signal{os.Interrupt}

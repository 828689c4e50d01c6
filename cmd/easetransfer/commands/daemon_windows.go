//go:build windows

package commands

import (
	"fmt"
	"os"
)

// processAlive reports whether a process with the given pid exists.
// Windows has no signal 0; opening a handle is the probe.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = proc.Release()
	return true
}

// startDaemon is not supported on Windows. Run with --foreground.
func startDaemon() error {
	return fmt.Errorf("daemon mode is not supported on Windows, use --foreground")
}

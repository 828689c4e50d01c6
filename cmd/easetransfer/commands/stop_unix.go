//go:build !windows

package commands

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// terminate signals the hub process: SIGTERM for a graceful drain, or
// SIGKILL when force is set.
func terminate(proc *os.Process, pid int, force bool) error {
	sig, name := syscall.SIGTERM, "SIGTERM"
	if force {
		sig, name = syscall.SIGKILL, "SIGKILL"
	}

	fmt.Printf("Sending %s to process %d...\n", name, pid)

	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return errProcessDone
		}
		return err
	}
	return nil
}

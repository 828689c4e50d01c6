//go:build windows

package commands

import (
	"errors"
	"fmt"
	"os"
)

// terminate stops the hub process. Windows cannot deliver SIGTERM, so the
// graceful path sends os.Interrupt and force falls back to Kill.
func terminate(proc *os.Process, pid int, force bool) error {
	var err error
	if force {
		fmt.Printf("Killing process %d...\n", pid)
		err = proc.Kill()
	} else {
		fmt.Printf("Sending interrupt to process %d...\n", pid)
		err = proc.Signal(os.Interrupt)
	}

	if err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return errProcessDone
		}
		return err
	}
	return nil
}

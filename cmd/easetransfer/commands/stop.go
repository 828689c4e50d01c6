package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errProcessDone reports that the target process had already exited when
// the signal was sent.
var errProcessDone = errors.New("process already done")

var (
	stopPidFile string
	stopForce   bool
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the relay hub",
	Long: `Stop a running easeTransfer hub.

By default, sends SIGTERM for graceful shutdown: connected devices get a
close frame and in-flight requests are drained. Use --force for immediate
termination with SIGKILL.

Examples:
  # Stop hub (uses default PID file)
  easetransfer stop

  # Stop hub using custom PID file
  easetransfer stop --pid-file /var/run/easetransfer.pid

  # Force stop (SIGKILL)
  easetransfer stop --force`,
	RunE: runStop,
}

func init() {
	stopCmd.Flags().StringVar(&stopPidFile, "pid-file", "", "Path to PID file (default: $XDG_STATE_HOME/easetransfer/easetransfer.pid)")
	stopCmd.Flags().BoolVarP(&stopForce, "force", "f", false, "Force kill (SIGKILL) instead of graceful shutdown (SIGTERM)")
}

func runStop(cmd *cobra.Command, args []string) error {
	pidPath := stopPidFile
	if pidPath == "" {
		pidPath = GetDefaultPidFile()
	}

	pid, err := readPidFile(pidPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("PID file not found: %s\n\nIs the hub running?", pidPath)
		}
		return err
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process %d: %w", pid, err)
	}

	err = terminate(proc, pid, stopForce)
	switch {
	case errors.Is(err, errProcessDone):
		fmt.Println("Hub already stopped")
		_ = os.Remove(pidPath)
		return nil
	case err != nil:
		return fmt.Errorf("failed to stop process %d: %w", pid, err)
	}

	if stopForce {
		fmt.Println("Hub terminated")
	} else {
		fmt.Println("Shutdown signal sent. The hub will stop gracefully.")
	}

	return nil
}

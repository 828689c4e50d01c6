package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/config"
	"github.com/spf13/cobra"
)

var (
	logsFollow bool
	logsLines  int
	logsSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Tail hub logs",
	Long: `Display and optionally follow the easeTransfer hub logs.

The log file comes from 'logging.output' in the configuration. When the hub
logs to stdout or stderr, the daemon redirect file is read instead (daemon
mode sends both streams there).

Examples:
  # Show last 100 lines (default)
  easetransfer logs

  # Show last 50 lines
  easetransfer logs -n 50

  # Follow logs in real-time
  easetransfer logs -f

  # Show logs since a specific time
  easetransfer logs --since "2024-01-15T10:00:00Z"`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Follow log output")
	logsCmd.Flags().IntVarP(&logsLines, "lines", "n", 100, "Number of lines to show")
	logsCmd.Flags().StringVar(&logsSince, "since", "", "Show logs since timestamp (RFC3339 format)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := resolveLogFile(cfg)
	if err != nil {
		return err
	}

	var since time.Time
	if logsSince != "" {
		since, err = time.Parse(time.RFC3339, logsSince)
		if err != nil {
			return fmt.Errorf("invalid --since format (use RFC3339): %w", err)
		}
	}

	if err := printLastLines(os.Stdout, logFile, logsLines, since); err != nil {
		return err
	}
	if !logsFollow {
		return nil
	}
	return followLogFile(logFile)
}

// resolveLogFile maps the configured log output to a readable file. Console
// outputs fall back to the daemon redirect file when one exists.
func resolveLogFile(cfg *config.Config) (string, error) {
	out := cfg.Logging.Output
	if out == "stdout" || out == "stderr" {
		fallback := GetDefaultLogFile()
		if _, err := os.Stat(fallback); err != nil {
			return "", fmt.Errorf("hub is configured to log to %s, not a file\nConfigure 'logging.output' in config to a file path, or start the hub as a daemon", out)
		}
		return fallback, nil
	}
	if _, err := os.Stat(out); os.IsNotExist(err) {
		return "", fmt.Errorf("log file not found: %s\nThe hub may not have started yet or is logging elsewhere", out)
	}
	return out, nil
}

// printLastLines writes the last n lines of the file to w, holding at most
// n lines in memory. Lines stamped before since are skipped.
func printLastLines(w io.Writer, path string, n int, since time.Time) error {
	if n <= 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, 0, n)
	next := 0

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !since.IsZero() {
			if ts := extractTimestamp(line); !ts.IsZero() && ts.Before(since) {
				continue
			}
		}
		if len(ring) < n {
			ring = append(ring, line)
		} else {
			ring[next] = line
			next = (next + 1) % n
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("error reading log file: %w", err)
	}

	// next points at the oldest retained line once the ring wrapped.
	for i := range ring {
		fmt.Fprintln(w, ring[(next+i)%len(ring)])
	}
	return nil
}

// followLogFile prints lines as they are appended, until SIGINT or SIGTERM.
func followLogFile(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch log file: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to end of log file: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)...\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				copyNew(f, os.Stdout)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

// copyNew copies everything between the file's cursor and EOF to w. A cursor
// past EOF means the file was truncated (rotation); copying restarts from
// the top of the new contents.
func copyNew(f *os.File, w io.Writer) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}
	if fi, err := f.Stat(); err == nil && fi.Size() < pos {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return
		}
	}
	_, _ = io.Copy(w, f)
}

// Hub log lines carry their stamp in one of two shapes: the text handler's
// "[2006-01-02 15:04:05]" prefix (local time) and the JSON handler's
// RFC3339 "time" field.
const (
	textStampLayout = "2006-01-02 15:04:05"
	jsonTimeKey     = `"time":"`
)

// extractTimestamp pulls the stamp out of a log line, returning the zero
// time when the line has none.
func extractTimestamp(line string) time.Time {
	if len(line) > 1+len(textStampLayout) && line[0] == '[' && line[1+len(textStampLayout)] == ']' {
		if t, err := time.ParseInLocation(textStampLayout, line[1:1+len(textStampLayout)], time.Local); err == nil {
			return t
		}
	}
	if i := strings.Index(line, jsonTimeKey); i >= 0 {
		rest := line[i+len(jsonTimeKey):]
		if j := strings.IndexByte(rest, '"'); j > 0 {
			if t, err := time.Parse(time.RFC3339Nano, rest[:j]); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// GetDefaultStateDir returns the state directory for the PID file and the
// daemon log.
func GetDefaultStateDir() string {
	return config.GetStateDir()
}

// GetDefaultPidFile returns the default PID file path.
func GetDefaultPidFile() string {
	return filepath.Join(GetDefaultStateDir(), "easetransfer.pid")
}

// GetDefaultLogFile returns the default log file path for daemon mode.
func GetDefaultLogFile() string {
	return filepath.Join(GetDefaultStateDir(), "easetransfer.log")
}

// writePidFile records the calling process id for stop and status.
func writePidFile(path string) error {
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// readPidFile returns the process id recorded at path.
func readPidFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PID file: %w", err)
	}
	s := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(s)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid PID %q in %s", s, path)
	}
	return pid, nil
}

// resolveAPIPort resolves the hub API port: an explicit flag wins, then
// the configured server port, then the built-in default.
func resolveAPIPort(flagPort int) int {
	if flagPort > 0 {
		return flagPort
	}
	if cfg, err := config.Load(GetConfigFile()); err == nil {
		return cfg.Server.Port
	}
	return config.GetDefaultConfig().Server.Port
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// InitConfigToPath writes an annotated starter config file, creating
// parent directories as needed. It refuses to overwrite an existing file
// unless force is set.
func InitConfigToPath(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", configPath)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(annotatedConfig()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// annotatedConfig renders the starter configuration. Values that equal
// the built-in default are left commented out, so the file documents
// every knob while changing nothing.
func annotatedConfig() string {
	def := GetDefaultConfig()

	return fmt.Sprintf(`# easeTransfer Configuration File
#
# Every setting below shows its default. Uncomment a line to change it.
# Environment variables override this file: EASETRANSFER_SERVER_PORT
# (or the bare PORT) beats server.port, EASETRANSFER_LOGGING_LEVEL
# beats logging.level, and so on.

server:
  # Interface to bind. Empty binds every IPv4 interface, which is what
  # a LAN hub normally wants.
  host: %q
  # TCP port for the combined HTTP/WebSocket listener.
  port: %d
  # Graceful shutdown limit.
  # shutdown_timeout: 30s
  # Timeouts for plain HTTP requests. WebSocket connections manage
  # their own deadlines and are not capped by these.
  # read_timeout: 10s
  # write_timeout: 10s
  # idle_timeout: 60s

session:
  # How long a completed file stays downloadable.
  # file_ttl: 30m
  # How often expired files are swept.
  # sweep_interval: 5m
  # How long an empty session lingers so a device can rejoin.
  # empty_grace: 5m
  # Device name length cap, in characters.
  max_device_name: %d

transport:
  # Largest accepted WebSocket message ("100MB", "256Mi", or bytes).
  # max_frame_size: 100MB
  # Keepalive ping cadence and the idle cutoff for silent peers.
  # ping_interval: 30s
  # read_idle_timeout: 60s
  # write_timeout: 10s

storage:
  # Lifetime usage counters (JSON). Empty keeps them in memory only.
  stats_file: %q
  # User feedback log (JSON lines). Empty disables it.
  feedback_file: %q

logging:
  # DEBUG, INFO, WARN, ERROR
  level: %q
  # text or json
  format: %q
  # stdout, stderr, or a file path
  output: %q

metrics:
  # Prometheus endpoint, served on the same port as everything else.
  enabled: %t
  path: %q

telemetry:
  # OpenTelemetry trace export (OTLP over gRPC).
  enabled: %t
  endpoint: %q
  insecure: %t
  # sample_rate: 1.0
  profiling:
    # Pyroscope continuous profiling.
    enabled: %t
    endpoint: %q
`,
		def.Server.Host,
		def.Server.Port,
		def.Session.MaxDeviceName,
		def.Storage.StatsFile,
		def.Storage.FeedbackFile,
		def.Logging.Level,
		def.Logging.Format,
		def.Logging.Output,
		def.Metrics.Enabled,
		def.Metrics.Path,
		def.Telemetry.Enabled,
		def.Telemetry.Endpoint,
		def.Telemetry.Insecure,
		def.Telemetry.Profiling.Enabled,
		def.Telemetry.Profiling.Endpoint,
	)
}

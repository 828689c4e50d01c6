package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/bytesize"
)

// Config represents the easeTransfer hub configuration.
//
// This structure captures all static configuration of the hub:
//   - Server settings (the single HTTP/WebSocket listener)
//   - Session and file lifecycle (TTLs, janitor cadence)
//   - Transport framing limits and keepalive timing
//   - Storage paths for persisted artifacts (stats, feedback)
//   - Logging configuration
//   - Metrics and telemetry configuration
//
// File payloads are never configured here because they are never
// persisted; sessions, devices, and file bytes live in memory only.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (EASETRANSFER_*, plus bare PORT)
//  2. Configuration file (YAML or TOML)
//  3. Default values (lowest priority)
type Config struct {
	// Server contains settings for the combined HTTP/WebSocket listener
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Session controls session and file lifecycle
	Session SessionConfig `mapstructure:"session" yaml:"session"`

	// Transport controls WebSocket framing and keepalive behavior
	Transport TransportConfig `mapstructure:"transport" yaml:"transport"`

	// Storage contains paths for persisted artifacts (usage counters,
	// feedback log). File payloads are deliberately not stored.
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics contains Prometheus metrics configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Telemetry controls OpenTelemetry distributed tracing and
	// Pyroscope continuous profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ServerConfig contains settings for the hub's single listener. The
// REST API, the WebSocket endpoint, the metrics endpoint, and the
// embedded landing page all share this port.
type ServerConfig struct {
	// Host is the interface to bind. Empty or "0.0.0.0" binds every
	// IPv4 interface, which is what a LAN hub normally wants.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the TCP port to listen on.
	// The bare PORT environment variable overrides this.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535" yaml:"port"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// ReadTimeout, WriteTimeout, and IdleTimeout apply to plain HTTP
	// requests. WebSocket connections are hijacked after the upgrade
	// and manage their own deadlines, so these never cap a transfer.
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"required,gt=0" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required,gt=0" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"required,gt=0" yaml:"idle_timeout"`
}

// SessionConfig controls session and file lifecycle.
type SessionConfig struct {
	// FileTTL is how long a completed file stays downloadable before
	// the janitor expires it.
	FileTTL time.Duration `mapstructure:"file_ttl" validate:"required,gt=0" yaml:"file_ttl"`

	// SweepInterval is how often the janitor scans for expired files.
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"required,gt=0" yaml:"sweep_interval"`

	// EmptyGrace is how long an empty session lingers before removal,
	// so a briefly disconnected device can rejoin under the same code.
	EmptyGrace time.Duration `mapstructure:"empty_grace" validate:"required,gt=0" yaml:"empty_grace"`

	// MaxDeviceName caps client-supplied device names, in runes.
	// Longer names are truncated, not rejected.
	MaxDeviceName int `mapstructure:"max_device_name" validate:"required,min=1,max=256" yaml:"max_device_name"`
}

// TransportConfig controls the WebSocket framing layer.
//
// The download chunk size is fixed at 64 KiB and deliberately not
// configurable: receivers reassemble by byte count, so the chunk
// boundary is an implementation detail of the hub.
type TransportConfig struct {
	// MaxFrameSize caps a single inbound WebSocket message. Accepts
	// human-readable sizes like "100MB", "256Mi", or plain bytes.
	MaxFrameSize bytesize.ByteSize `mapstructure:"max_frame_size" validate:"required" yaml:"max_frame_size"`

	// PingInterval is how often the hub pings each connection.
	PingInterval time.Duration `mapstructure:"ping_interval" validate:"required,gt=0" yaml:"ping_interval"`

	// ReadIdleTimeout disconnects a peer that has sent nothing (not
	// even a pong) for this long. Must exceed PingInterval or every
	// healthy connection would be reaped between pings.
	ReadIdleTimeout time.Duration `mapstructure:"read_idle_timeout" validate:"required,gt=0" yaml:"read_idle_timeout"`

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"required,gt=0" yaml:"write_timeout"`
}

// StorageConfig contains paths for the hub's persisted artifacts.
type StorageConfig struct {
	// StatsFile is where lifetime usage counters are persisted as JSON.
	// An empty path keeps counters in memory only.
	StatsFile string `mapstructure:"stats_file" yaml:"stats_file"`

	// FeedbackFile is where user feedback is appended as JSON lines.
	// An empty path disables the feedback log.
	FeedbackFile string `mapstructure:"feedback_file" yaml:"feedback_file"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: DEBUG, INFO, WARN, ERROR
	Level string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format is the log output format: text or json
	Format string `mapstructure:"format" validate:"omitempty,oneof=text json" yaml:"format"`

	// Output is the log destination: stdout, stderr, or a file path
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig contains Prometheus metrics configuration. Metrics are
// served on the same listener as everything else.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Path is the HTTP path for the metrics endpoint
	Path string `mapstructure:"path" validate:"omitempty,startswith=/" yaml:"path"`
}

// TelemetryConfig contains OpenTelemetry tracing configuration.
type TelemetryConfig struct {
	// Enabled turns OTLP trace export on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP gRPC endpoint (e.g. "localhost:4317")
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure disables TLS toward the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling rate (0.0 to 1.0)
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig contains Pyroscope continuous profiling configuration.
type ProfilingConfig struct {
	// Enabled turns continuous profiling on
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL (e.g. "http://localhost:4040")
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes specifies which profile types to collect
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (EASETRANSFER_*, plus bare PORT)
//  2. Configuration file
//  3. Default values
//
// A missing config file is not an error: defaults plus environment
// variables form a complete configuration, so `PORT=8080 easetransfer
// start` works with nothing on disk.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Configure viper
	setupViper(v, configPath)

	// Read configuration file if it exists
	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	// Unmarshal into config struct with custom decode hooks. Every key
	// has a registered default, so this works with no file at all and
	// still sees environment overrides.
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Apply defaults for any missing values
	ApplyDefaults(&cfg)

	// Validate configuration
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
//
// An explicitly specified config file that does not exist is an error
// (silently running on defaults would hide a typo'd --config flag).
// No file at the default location is fine: the hub runs on defaults
// and environment variables.
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: User-friendly error with instructions on failure
func MustLoad(configPath string) (*Config, error) {
	if configPath != "" {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("configuration file not found: %s\n\n"+
				"Please create the configuration file:\n"+
				"  easetransfer config init --config %s",
				configPath, configPath)
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Register every key with its default value. Viper only resolves
	// environment variables for keys it knows about, so without this
	// an env-only configuration (no file) would be invisible.
	registerDefaults(v)

	// Set up environment variable support
	// Environment variables use EASETRANSFER_ prefix and underscores
	// Example: EASETRANSFER_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("EASETRANSFER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The bare PORT variable is the zero-config deployment knob.
	// EASETRANSFER_SERVER_PORT wins when both are set.
	_ = v.BindEnv("server.port", "EASETRANSFER_SERVER_PORT", "PORT")

	// Configure config file search
	if configPath != "" {
		// Use explicitly specified config file
		v.SetConfigFile(configPath)
	} else {
		// Use default location: $XDG_CONFIG_HOME/easetransfer/config.{yaml,toml}
		configDir := getConfigDir()
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml") // Primary format
	}
}

// registerDefaults seeds viper with the default value of every key.
func registerDefaults(v *viper.Viper) {
	def := GetDefaultConfig()

	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", def.Server.IdleTimeout)

	v.SetDefault("session.file_ttl", def.Session.FileTTL)
	v.SetDefault("session.sweep_interval", def.Session.SweepInterval)
	v.SetDefault("session.empty_grace", def.Session.EmptyGrace)
	v.SetDefault("session.max_device_name", def.Session.MaxDeviceName)

	// Registered as a raw byte count; the decode hook converts it back.
	v.SetDefault("transport.max_frame_size", def.Transport.MaxFrameSize.Uint64())
	v.SetDefault("transport.ping_interval", def.Transport.PingInterval)
	v.SetDefault("transport.read_idle_timeout", def.Transport.ReadIdleTimeout)
	v.SetDefault("transport.write_timeout", def.Transport.WriteTimeout)

	v.SetDefault("storage.stats_file", def.Storage.StatsFile)
	v.SetDefault("storage.feedback_file", def.Storage.FeedbackFile)

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
	v.SetDefault("logging.output", def.Logging.Output)

	v.SetDefault("metrics.enabled", def.Metrics.Enabled)
	v.SetDefault("metrics.path", def.Metrics.Path)

	v.SetDefault("telemetry.enabled", def.Telemetry.Enabled)
	v.SetDefault("telemetry.endpoint", def.Telemetry.Endpoint)
	v.SetDefault("telemetry.insecure", def.Telemetry.Insecure)
	v.SetDefault("telemetry.sample_rate", def.Telemetry.SampleRate)
	v.SetDefault("telemetry.profiling.enabled", def.Telemetry.Profiling.Enabled)
	v.SetDefault("telemetry.profiling.endpoint", def.Telemetry.Profiling.Endpoint)
	v.SetDefault("telemetry.profiling.profile_types", def.Telemetry.Profiling.ProfileTypes)
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		// Check if error is "config file not found"
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Also check for os.PathError when explicit config file doesn't exist
		if os.IsNotExist(err) {
			// Config file not found is acceptable - use defaults
			return false, nil
		}
		// Other errors are problems
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
// This includes ByteSize and time.Duration parsing.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook returns a mapstructure decode hook that converts strings
// and integers to bytesize.ByteSize. This enables config files to use human-readable
// sizes like "1Gi", "500Mi", "100MB", or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to ByteSize
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse human-readable string like "1Gi", "500Mi", "100MB"
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook returns a mapstructure decode hook that converts strings
// to time.Duration. This enables config files to use human-readable durations
// like "30s", "5m", "1h".
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		// Only handle conversion to time.Duration
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			// Parse duration string like "30s", "5m", "1h"
			return time.ParseDuration(v)
		case int:
			// Assume nanoseconds for raw integers
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			// YAML often deserializes numbers as float64
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	// Check XDG_CONFIG_HOME
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "easetransfer")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		// If we can't get home dir, use current directory as last resort
		return "."
	}

	return filepath.Join(home, ".config", "easetransfer")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	path := GetDefaultConfigPath()
	_, err := os.Stat(path)
	return err == nil
}

// GetStateDir returns the directory for runtime state: the PID file,
// the daemon log, persisted stats, and the feedback log.
//
// Uses XDG_STATE_HOME if set, otherwise ~/.local/state, or falls back
// to the current directory if the home directory cannot be determined.
func GetStateDir() string {
	if xdgState := os.Getenv("XDG_STATE_HOME"); xdgState != "" {
		return filepath.Join(xdgState, "easetransfer")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".local", "state", "easetransfer")
}

package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/bytesize"
)

// ApplyDefaults fills every zero-valued field with its default. It runs
// after file and environment loading, so explicitly configured values are
// never touched.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applySessionDefaults(&cfg.Session)
	applyTransportDefaults(&cfg.Transport)
	applyStorageDefaults(&cfg.Storage)
	applyLoggingDefaults(&cfg.Logging)
	applyMetricsDefaults(&cfg.Metrics)
	applyTelemetryDefaults(&cfg.Telemetry)
}

// applyServerDefaults sets listener defaults.
func applyServerDefaults(cfg *ServerConfig) {
	// Host defaults to empty, which binds all IPv4 interfaces.
	// A LAN hub is useless if only localhost can reach it.

	if cfg.Port == 0 {
		cfg.Port = 3000
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// applySessionDefaults sets session lifecycle defaults.
func applySessionDefaults(cfg *SessionConfig) {
	if cfg.FileTTL == 0 {
		cfg.FileTTL = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 5 * time.Minute
	}
	if cfg.EmptyGrace == 0 {
		cfg.EmptyGrace = 5 * time.Minute
	}
	if cfg.MaxDeviceName == 0 {
		cfg.MaxDeviceName = 64
	}
}

// applyTransportDefaults sets WebSocket framing defaults.
func applyTransportDefaults(cfg *TransportConfig) {
	// 100 MB inbound frame cap; large enough for a generous upload
	// chunk, small enough that one frame can't exhaust memory.
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = 100 * bytesize.MB
	}
	if cfg.PingInterval == 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadIdleTimeout == 0 {
		cfg.ReadIdleTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
}

// applyStorageDefaults sets persisted artifact paths under the XDG
// state directory.
func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.StatsFile == "" {
		cfg.StatsFile = filepath.Join(GetStateDir(), "stats.json")
	}
	if cfg.FeedbackFile == "" {
		cfg.FeedbackFile = filepath.Join(GetStateDir(), "feedback.jsonl")
	}
}

// applyLoggingDefaults sets logging defaults. The level is uppercased here
// so the rest of the hub can compare it verbatim.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyMetricsDefaults leaves metrics opt-in but fixes the endpoint path.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Path == "" {
		cfg.Path = "/metrics"
	}
}

// applyTelemetryDefaults points tracing at a local OTLP collector and
// profiling at a local Pyroscope, both opt-in via Enabled.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
	applyProfilingDefaults(&cfg.Profiling)
}

func applyProfilingDefaults(cfg *ProfilingConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "http://localhost:4040"
	}
	// CPU, heap, and goroutine profiles; goroutine counts catch leaked
	// read pumps early.
	if len(cfg.ProfileTypes) == 0 {
		cfg.ProfileTypes = []string{
			"cpu",
			"alloc_objects",
			"alloc_space",
			"inuse_objects",
			"inuse_space",
			"goroutines",
		}
	}
}

// GetDefaultConfig returns a fully defaulted configuration, used by the
// starter-file generator and tests.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

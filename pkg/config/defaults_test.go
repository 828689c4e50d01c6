package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/bytesize"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_Server(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Server.Host != "" {
		t.Errorf("Expected default host to stay empty (all interfaces), got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Expected default port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("Expected default read timeout 10s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("Expected default write timeout 10s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Server.IdleTimeout != 60*time.Second {
		t.Errorf("Expected default idle timeout 60s, got %v", cfg.Server.IdleTimeout)
	}
}

func TestApplyDefaults_Session(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Session.FileTTL != 30*time.Minute {
		t.Errorf("Expected default file TTL 30m, got %v", cfg.Session.FileTTL)
	}
	if cfg.Session.SweepInterval != 5*time.Minute {
		t.Errorf("Expected default sweep interval 5m, got %v", cfg.Session.SweepInterval)
	}
	if cfg.Session.EmptyGrace != 5*time.Minute {
		t.Errorf("Expected default empty grace 5m, got %v", cfg.Session.EmptyGrace)
	}
	if cfg.Session.MaxDeviceName != 64 {
		t.Errorf("Expected default max device name 64, got %d", cfg.Session.MaxDeviceName)
	}
}

func TestApplyDefaults_Transport(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Transport.MaxFrameSize != 100*bytesize.MB {
		t.Errorf("Expected default max frame size 100MB, got %v", cfg.Transport.MaxFrameSize)
	}
	if cfg.Transport.PingInterval != 30*time.Second {
		t.Errorf("Expected default ping interval 30s, got %v", cfg.Transport.PingInterval)
	}
	if cfg.Transport.ReadIdleTimeout != 60*time.Second {
		t.Errorf("Expected default read idle timeout 60s, got %v", cfg.Transport.ReadIdleTimeout)
	}
	if cfg.Transport.WriteTimeout != 10*time.Second {
		t.Errorf("Expected default write timeout 10s, got %v", cfg.Transport.WriteTimeout)
	}
}

func TestApplyDefaults_Storage(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if filepath.Base(cfg.Storage.StatsFile) != "stats.json" {
		t.Errorf("Expected default stats file 'stats.json', got %q", cfg.Storage.StatsFile)
	}
	if filepath.Base(cfg.Storage.FeedbackFile) != "feedback.jsonl" {
		t.Errorf("Expected default feedback file 'feedback.jsonl', got %q", cfg.Storage.FeedbackFile)
	}
}

func TestApplyDefaults_Metrics(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Metrics.Enabled {
		t.Error("Expected metrics to default to disabled")
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Expected default metrics path '/metrics', got %q", cfg.Metrics.Path)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 60 * time.Second,
		},
		Session: SessionConfig{
			FileTTL: 2 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/easetransfer.log",
		},
	}

	ApplyDefaults(cfg)

	// Verify explicit values were preserved
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected explicit port 8080 to be preserved, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Session.FileTTL != 2*time.Hour {
		t.Errorf("Expected explicit file TTL 2h to be preserved, got %v", cfg.Session.FileTTL)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/easetransfer.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	// The default config should pass validation
	err := Validate(cfg)
	if err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	// Check all required sections are present
	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.Server.Port == 0 {
		t.Error("Default config missing server port")
	}
	if cfg.Session.FileTTL == 0 {
		t.Error("Default config missing file TTL")
	}
	if cfg.Transport.MaxFrameSize == 0 {
		t.Error("Default config missing max frame size")
	}
	if cfg.Storage.StatsFile == "" {
		t.Error("Default config missing stats file path")
	}
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance. The validator caches
// struct metadata, so one instance serves every call.
var validate = validator.New()

// Validate checks the configuration for invalid or inconsistent values.
//
// Per-field rules live in the struct tags (see config.go); rules that
// span multiple fields are checked explicitly here. Returns an error
// naming the offending field and the violated rule.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("invalid configuration: %s", formatValidationErrors(verrs))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// A read idle timeout at or below the ping interval would reap
	// every healthy connection between pings.
	if cfg.Transport.ReadIdleTimeout <= cfg.Transport.PingInterval {
		return fmt.Errorf("transport.read_idle_timeout (%v) must exceed transport.ping_interval (%v)",
			cfg.Transport.ReadIdleTimeout, cfg.Transport.PingInterval)
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return fmt.Errorf("telemetry.endpoint is required when telemetry is enabled")
	}
	if cfg.Telemetry.Profiling.Enabled && cfg.Telemetry.Profiling.Endpoint == "" {
		return fmt.Errorf("telemetry.profiling.endpoint is required when profiling is enabled")
	}

	return nil
}

// formatValidationErrors renders validator errors with the offending
// field and the violated rule, e.g. "Config.Server.Port failed on 'max'".
func formatValidationErrors(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}

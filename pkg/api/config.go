package api

import "time"

// Config configures the hub's HTTP server.
//
// The server carries everything on one port: the REST API, the
// WebSocket endpoint, the Prometheus endpoint, and the landing page.
type Config struct {
	// Host is the interface to bind. Empty binds all IPv4 interfaces.
	Host string

	// Port is the TCP port to listen on.
	// Default: 3000
	Port int

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. WebSocket connections are hijacked after the
	// upgrade and are not affected.
	// Default: 10s
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Hijacked connections are not affected.
	// Default: 10s
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 60s
	IdleTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown once the server's context
	// is cancelled. In-flight requests past this deadline are dropped.
	// Default: 30s
	ShutdownTimeout time.Duration

	// MetricsPath is where the Prometheus handler is mounted.
	// Default: /metrics
	MetricsPath string
}

// applyDefaults fills in zero values with sensible defaults.
//
// Defaults are applied here too so the server works correctly even when
// created directly (e.g., in tests). This is idempotent with the defaults
// applied during config loading.
func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 3000
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
}

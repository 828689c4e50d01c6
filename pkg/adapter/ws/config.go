package ws

import "time"

// DownloadChunkSize is the fixed payload size of hub-to-device binary data
// frames. The last chunk of a file may be shorter. Uploads are not chunked
// by the hub; devices may send any payload size up to MaxFrameSize.
const DownloadChunkSize = 64 * 1024

// Defaults applied by Config.withDefaults for fields left zero.
const (
	DefaultMaxFrameSize    = 100 << 20 // 100 MiB per WebSocket frame
	DefaultPingInterval    = 30 * time.Second
	DefaultReadIdleTimeout = 60 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultMaxDeviceName   = 64
)

// Config holds the transport settings of the WebSocket adapter.
type Config struct {
	// MaxFrameSize caps a single inbound WebSocket frame, control or
	// binary. A peer exceeding it is disconnected by the transport.
	MaxFrameSize int64

	// PingInterval is how often the hub pings an idle connection.
	PingInterval time.Duration

	// ReadIdleTimeout closes a connection that produced neither a frame
	// nor a pong for this long. It must be longer than PingInterval.
	ReadIdleTimeout time.Duration

	// WriteTimeout bounds every write to a device, including each data
	// frame of a download stream.
	WriteTimeout time.Duration

	// MaxDeviceName caps declared device names, in runes.
	MaxDeviceName int
}

// DefaultConfig returns the transport settings used when none are given.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

// withDefaults fills zero fields with the package defaults.
func (c Config) withDefaults() Config {
	if c.MaxFrameSize <= 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.PingInterval <= 0 {
		c.PingInterval = DefaultPingInterval
	}
	if c.ReadIdleTimeout <= 0 {
		c.ReadIdleTimeout = DefaultReadIdleTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeout
	}
	if c.MaxDeviceName <= 0 {
		c.MaxDeviceName = DefaultMaxDeviceName
	}
	return c
}

package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds connection-scoped logging context. A value is attached to
// a connection's context at accept time and enriched as the device registers
// and joins a session.
type LogContext struct {
	RemoteAddr  string    // peer address of the socket
	DeviceID    string    // hub-assigned device identifier
	DeviceName  string    // client-declared display name
	SessionCode string    // session the device currently belongs to
	StartTime   time.Time // for duration calculation
}

// WithContext returns a new context carrying the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a freshly accepted connection
func NewLogContext(remoteAddr string) *LogContext {
	return &LogContext{
		RemoteAddr: remoteAddr,
		StartTime:  time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	out := *lc
	return &out
}

// WithDevice returns a copy with the device identity set
func (lc *LogContext) WithDevice(id, name string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.DeviceID = id
		clone.DeviceName = name
	}
	return clone
}

// WithSession returns a copy with the session code set
func (lc *LogContext) WithSession(code string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.SessionCode = code
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}

// Package logger wraps log/slog with level switching at runtime, a colored
// text handler for terminals, and connection-scoped context fields so every
// line produced while serving a device can be traced back to it.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// Config selects the minimum level (DEBUG, INFO, WARN, ERROR), the output
// format (text or json), and the destination (stdout, stderr, or a file
// path). Zero values leave the corresponding setting untouched.
type Config struct {
	Level  string
	Format string
	Output string
}

var (
	// levelVar is shared by every handler built here, so SetLevel takes
	// effect without a handler swap.
	levelVar slog.LevelVar

	mu      sync.Mutex // guards the fields below and handler swaps
	format  = "text"
	output  io.Writer = os.Stdout
	colored bool

	active atomic.Pointer[slog.Logger]
)

func init() {
	colored = term.IsTerminal(int(os.Stdout.Fd()))

	mu.Lock()
	rebuildLocked()
	mu.Unlock()
}

// parseLevel maps config spellings onto slog levels.
func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToUpper(name) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}

// rebuildLocked swaps in a handler built from the current format, output and
// color choice. Callers must hold mu.
func rebuildLocked() {
	opts := &slog.HandlerOptions{Level: &levelVar}

	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(output, opts)
	} else {
		h = NewColorTextHandler(output, opts, colored)
	}
	active.Store(slog.New(h))
}

// Init applies the hub's logging configuration. A file output is opened for
// append and never gets ANSI color.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	if cfg.Output != "" {
		w, isTTY, err := openOutput(cfg.Output)
		if err != nil {
			return err
		}
		output, colored = w, isTTY
	}
	if cfg.Level != "" {
		if lv, ok := parseLevel(cfg.Level); ok {
			levelVar.Set(lv)
		}
	}
	if f := strings.ToLower(cfg.Format); f == "text" || f == "json" {
		format = f
	}

	rebuildLocked()
	return nil
}

func openOutput(dest string) (w io.Writer, isTTY bool, err error) {
	switch strings.ToLower(dest) {
	case "stdout":
		return os.Stdout, term.IsTerminal(int(os.Stdout.Fd())), nil
	case "stderr":
		return os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file %q: %w", dest, err)
	}
	return f, false, nil
}

// SetLevel changes the minimum level at runtime. Unknown names are ignored.
func SetLevel(name string) {
	if lv, ok := parseLevel(name); ok {
		levelVar.Set(lv)
	}
}

// SetFormat switches between text and json output. Anything else is ignored.
func SetFormat(name string) {
	name = strings.ToLower(name)
	if name != "text" && name != "json" {
		return
	}

	mu.Lock()
	format = name
	rebuildLocked()
	mu.Unlock()
}

// Debug logs at debug level with key/value fields.
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) {
	emit(context.Background(), slog.LevelDebug, msg, args)
}

// Info logs at info level with key/value fields.
func Info(msg string, args ...any) {
	emit(context.Background(), slog.LevelInfo, msg, args)
}

// Warn logs at warn level with key/value fields.
func Warn(msg string, args ...any) {
	emit(context.Background(), slog.LevelWarn, msg, args)
}

// Error logs at error level with key/value fields.
func Error(msg string, args ...any) {
	emit(context.Background(), slog.LevelError, msg, args)
}

// DebugCtx logs at debug level, prepending the connection fields carried by
// ctx (remote address, device id, session code).
func DebugCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelDebug, msg, args)
}

// InfoCtx logs at info level with connection fields from ctx.
func InfoCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelInfo, msg, args)
}

// WarnCtx logs at warn level with connection fields from ctx.
func WarnCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelWarn, msg, args)
}

// ErrorCtx logs at error level with connection fields from ctx.
func ErrorCtx(ctx context.Context, msg string, args ...any) {
	emitCtx(ctx, slog.LevelError, msg, args)
}

func emit(ctx context.Context, lv slog.Level, msg string, args []any) {
	l := active.Load()
	if !l.Enabled(ctx, lv) {
		return
	}
	l.Log(ctx, lv, msg, args...)
}

// emitCtx defers building the connection fields until the level is known to
// be enabled.
func emitCtx(ctx context.Context, lv slog.Level, msg string, args []any) {
	l := active.Load()
	if !l.Enabled(ctx, lv) {
		return
	}
	l.Log(ctx, lv, msg, prependConnFields(ctx, args)...)
}

// prependConnFields puts the connection identity carried by ctx ahead of the
// caller's fields, so every line about a device leads with who it was.
func prependConnFields(ctx context.Context, args []any) []any {
	lc := FromContext(ctx)
	if lc == nil {
		return args
	}

	fields := make([]any, 0, 8+len(args))
	if lc.RemoteAddr != "" {
		fields = append(fields, KeyRemoteAddr, lc.RemoteAddr)
	}
	if lc.DeviceID != "" {
		fields = append(fields, KeyDeviceID, lc.DeviceID)
	}
	if lc.DeviceName != "" {
		fields = append(fields, KeyDeviceName, lc.DeviceName)
	}
	if lc.SessionCode != "" {
		fields = append(fields, KeySessionCode, lc.SessionCode)
	}
	return append(fields, args...)
}

// Duration returns the time since start in milliseconds, for KeyDurationMs
// fields.
func Duration(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

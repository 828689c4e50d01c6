package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

const stampLayout = "2006-01-02 15:04:05"

// bufPool recycles line buffers across Handle calls.
var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, 0, 256)
		return &b
	},
}

// ColorTextHandler implements slog.Handler with human-oriented text output:
// a bracketed timestamp and level followed by the message and key=value
// pairs, with optional ANSI color when writing to a terminal.
type ColorTextHandler struct {
	opts     *slog.HandlerOptions
	w        io.Writer
	mu       *sync.Mutex
	attrs    []slog.Attr
	prefix   string // accumulated group prefix, "a.b."
	useColor bool
}

// NewColorTextHandler creates a new ColorTextHandler
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &ColorTextHandler{
		opts:     opts,
		w:        w,
		mu:       &sync.Mutex{},
		useColor: useColor,
	}
}

// Enabled reports whether the handler handles records at the given level
func (h *ColorTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats a record into a pooled buffer and writes it under the
// shared mutex so concurrent lines never interleave.
func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	bufp := bufPool.Get().(*[]byte)
	buf := (*bufp)[:0]

	buf = append(buf, '[')
	buf = r.Time.AppendFormat(buf, stampLayout)
	buf = append(buf, "] ["...)
	buf = h.appendLevel(buf, r.Level)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	for _, a := range h.attrs {
		buf = h.appendPair(buf, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		buf = h.appendPair(buf, a)
		return true
	})
	buf = append(buf, '\n')

	h.mu.Lock()
	_, err := h.w.Write(buf)
	h.mu.Unlock()

	*bufp = buf
	bufPool.Put(bufp)
	return err
}

func (h *ColorTextHandler) appendLevel(buf []byte, level slog.Level) []byte {
	var label, ansi string
	switch {
	case level < slog.LevelInfo:
		label, ansi = "DEBUG", colorGray
	case level < slog.LevelWarn:
		label, ansi = "INFO", colorGreen
	case level < slog.LevelError:
		label, ansi = "WARN", colorYellow
	default:
		label, ansi = "ERROR", colorRed
	}

	if !h.useColor {
		return append(buf, label...)
	}
	buf = append(buf, ansi...)
	buf = append(buf, label...)
	return append(buf, colorReset...)
}

func (h *ColorTextHandler) appendPair(buf []byte, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return buf
	}
	a.Value = a.Value.Resolve()

	buf = append(buf, ' ')
	if h.useColor {
		buf = append(buf, colorCyan...)
		buf = append(buf, h.prefix...)
		buf = append(buf, a.Key...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, h.prefix...)
		buf = append(buf, a.Key...)
	}
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		return appendMaybeQuoted(buf, v.String())
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'f', 3, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	case slog.KindAny:
		return fmt.Appendf(buf, "%v", v.Any())
	default:
		return append(buf, v.String()...)
	}
}

// appendMaybeQuoted quotes values that would break key=value grepping.
func appendMaybeQuoted(buf []byte, s string) []byte {
	if strings.ContainsAny(s, " =") {
		return strconv.AppendQuote(buf, s)
	}
	return append(buf, s...)
}

// WithAttrs returns a new handler with additional pre-bound attrs. The write
// mutex is shared with the parent so siblings still serialize output.
func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(slices.Clone(h.attrs), attrs...)
	return &next
}

// WithGroup returns a new handler that prefixes subsequent attr keys with
// the group name.
func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

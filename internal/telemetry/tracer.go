package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for hub operations. Client keys follow OpenTelemetry
// semantic conventions; hub-specific keys use their own prefixes.
const (
	// Client attributes
	AttrClientAddr = "client.address"

	// Session attributes
	AttrSessionCode = "session.code"
	AttrDeviceID    = "device.id"
	AttrDeviceType  = "device.type"

	// Transfer attributes
	AttrFileID    = "file.id"
	AttrFileName  = "file.name"
	AttrFileSize  = "file.size"
	AttrMimeType  = "file.mime_type"
	AttrFrameType = "frame.type"
	AttrFrameSize = "frame.size"

	// HTTP attributes
	AttrHTTPRoute  = "http.route"
	AttrHTTPMethod = "http.method"
)

// Span names, <component>.<operation>. Frame spans derive their name from
// the frame type tag ("hub.create_session", "hub.request_file", ...).
const (
	SpanSweep      = "janitor.sweep"
	SpanAPIRequest = "api.request"
)

// ClientAddr returns an attribute for a full client address
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// SessionCode returns an attribute for a session join code
func SessionCode(code string) attribute.KeyValue {
	return attribute.String(AttrSessionCode, code)
}

// DeviceID returns an attribute for a hub-assigned device id
func DeviceID(id string) attribute.KeyValue {
	return attribute.String(AttrDeviceID, id)
}

// DeviceType returns an attribute for a device platform hint
func DeviceType(t string) attribute.KeyValue {
	return attribute.String(AttrDeviceType, t)
}

// FileID returns an attribute for a file identifier
func FileID(id string) attribute.KeyValue {
	return attribute.String(AttrFileID, id)
}

// FileName returns an attribute for an original file name
func FileName(name string) attribute.KeyValue {
	return attribute.String(AttrFileName, name)
}

// FileSize returns an attribute for a declared file size in bytes
func FileSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrFileSize, size)
}

// MimeType returns an attribute for a declared MIME type
func MimeType(mt string) attribute.KeyValue {
	return attribute.String(AttrMimeType, mt)
}

// FrameType returns an attribute for a control frame type tag
func FrameType(t string) attribute.KeyValue {
	return attribute.String(AttrFrameType, t)
}

// FrameSize returns an attribute for a raw frame length in bytes
func FrameSize(n int) attribute.KeyValue {
	return attribute.Int(AttrFrameSize, n)
}

// StartFrameSpan starts a span for one inbound control frame.
func StartFrameSpan(ctx context.Context, frameType string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		FrameType(frameType),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, "hub."+frameType, trace.WithAttributes(allAttrs...))
}

// StartAPISpan starts a span for one HTTP API request.
func StartAPISpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanAPIRequest, trace.WithAttributes(
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPRoute, route),
	))
}

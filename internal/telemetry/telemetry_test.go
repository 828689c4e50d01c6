package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// newRecordingTracer swaps the package tracer for one that records every
// span in memory, restoring the previous tracer when the test ends.
func newRecordingTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	rec := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	prev := tracer
	tracer = provider.Tracer("test")
	t.Cleanup(func() { tracer = prev })

	return rec
}

func TestInitDisabledInstallsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))

	assert.False(t, IsEnabled())

	// Span call sites stay unconditional: a disabled pipeline still
	// hands out usable spans.
	ctx, span := StartSpan(context.Background(), "hub.create_session")
	require.NotNil(t, ctx)
	span.End()
}

func TestSamplerForClamps(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{-0.5, "AlwaysOffSampler"},
		{0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
		{1, "AlwaysOnSampler"},
		{7, "AlwaysOnSampler"},
	}
	for _, tt := range tests {
		if got := samplerFor(tt.rate).Description(); got != tt.want {
			t.Errorf("samplerFor(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}
}

func TestFrameSpanNaming(t *testing.T) {
	rec := newRecordingTracer(t)

	_, span := StartFrameSpan(context.Background(), "create_session",
		ClientAddr("192.0.2.7:51000"), FrameSize(96))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "hub.create_session", spans[0].Name())

	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(AttrFrameType, "create_session"))
	assert.Contains(t, attrs, attribute.String(AttrClientAddr, "192.0.2.7:51000"))
	assert.Contains(t, attrs, attribute.Int(AttrFrameSize, 96))
}

func TestAPISpanNaming(t *testing.T) {
	rec := newRecordingTracer(t)

	_, span := StartAPISpan(context.Background(), "GET", "/api/info")
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, SpanAPIRequest, spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.String(AttrHTTPMethod, "GET"))
	assert.Contains(t, spans[0].Attributes(), attribute.String(AttrHTTPRoute, "/api/info"))
}

func TestRecordErrorMarksSpan(t *testing.T) {
	rec := newRecordingTracer(t)

	ctx, span := StartSpan(context.Background(), "hub.join_session")
	RecordError(ctx, errors.New("session not found"))
	RecordError(ctx, nil)
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "session not found", spans[0].Status().Description)

	// The nil error above must not have added a second error event.
	require.Len(t, spans[0].Events(), 1)
}

func TestSetAttributesOnRecordedSpan(t *testing.T) {
	rec := newRecordingTracer(t)

	ctx, span := StartSpan(context.Background(), "hub.file_start")
	SetAttributes(ctx, FileID("f-91"), FileName("photo.jpg"), FileSize(1<<20), MimeType("image/jpeg"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)

	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(AttrFileID, "f-91"))
	assert.Contains(t, attrs, attribute.String(AttrFileName, "photo.jpg"))
	assert.Contains(t, attrs, attribute.Int64(AttrFileSize, 1<<20))
	assert.Contains(t, attrs, attribute.String(AttrMimeType, "image/jpeg"))
}

func TestAttributeConstructors(t *testing.T) {
	tests := []struct {
		name    string
		attr    attribute.KeyValue
		wantKey string
		wantVal string
	}{
		{"client addr", ClientAddr("192.168.1.100:12345"), AttrClientAddr, "192.168.1.100:12345"},
		{"session code", SessionCode("A3F9K2"), AttrSessionCode, "A3F9K2"},
		{"device id", DeviceID("2b4f0b7e"), AttrDeviceID, "2b4f0b7e"},
		{"device type", DeviceType("android"), AttrDeviceType, "android"},
		{"frame size", FrameSize(512), AttrFrameSize, "512"},
		{"file size", FileSize(1 << 20), AttrFileSize, "1048576"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, string(tt.attr.Key))
			assert.Equal(t, tt.wantVal, tt.attr.Value.Emit())
		})
	}
}

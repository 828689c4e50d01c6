package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInboundDecodesClientFrames(t *testing.T) {
	t.Parallel()

	var in Inbound
	err := json.Unmarshal([]byte(`{
		"type": "join_session",
		"sessionCode": "AB23CD",
		"deviceName": "iPhone",
		"deviceType": "iphone",
		"unknownField": true
	}`), &in)
	require.NoError(t, err)

	assert.Equal(t, TypeJoinSession, in.Type)
	assert.Equal(t, "AB23CD", in.SessionCode)
	assert.Equal(t, "iPhone", in.DeviceName)
	assert.Equal(t, "iphone", in.DeviceType)
	// Fields of other frame types stay zero.
	assert.Empty(t, in.FileID)
	assert.Zero(t, in.FileSize)
}

// Clients match on exact key names, so the wire shape is part of the
// contract: camelCase keys, type tag present.
func TestEncodeUsesCamelCaseKeys(t *testing.T) {
	t.Parallel()

	frame, err := Encode(SessionCreated{
		Type:             TypeSessionCreated,
		SessionCode:      "AB23CD",
		DeviceID:         "dev-1",
		ConnectedDevices: 1,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(frame, &decoded))
	assert.Equal(t, "session_created", decoded["type"])
	assert.Equal(t, "AB23CD", decoded["sessionCode"])
	assert.Equal(t, "dev-1", decoded["deviceId"])
	assert.EqualValues(t, 1, decoded["connectedDevices"])
}

func TestFileMetaWireShape(t *testing.T) {
	t.Parallel()

	uploaded := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	frame, err := Encode(NewFile{
		Type: TypeNewFile,
		File: FileMeta{
			ID:           "11111111-2222-3333-4444-555555555555",
			OriginalName: "photo.jpg",
			Size:         1024,
			Mimetype:     "image/jpeg",
			UploadedAt:   uploaded,
		},
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(frame, &decoded))
	meta := decoded["file"].(map[string]any)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", meta["id"])
	assert.Equal(t, "photo.jpg", meta["originalName"])
	assert.EqualValues(t, 1024, meta["size"])
	assert.Equal(t, "image/jpeg", meta["mimetype"])
	assert.Equal(t, "2024-06-01T12:00:00Z", meta["uploadedAt"])
}

func TestProgressPercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		received int64
		total    int64
		want     int
	}{
		{"complete", 5, 5, 100},
		{"empty file reads complete", 0, 0, 100},
		{"nothing received", 0, 5, 0},
		{"rounds to nearest", 100000, 150000, 67},
		{"rounds down", 1, 3, 33},
		{"half rounds up", 1, 2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressPercent(tt.received, tt.total))
		})
	}
}

package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// ============================================================================
// Test harness
// ============================================================================

// newTestServer starts the adapter on an httptest server. The returned
// registry is the live one, so tests can assert hub state directly.
func newTestServer(t *testing.T, cfg Config) (*hub.Registry, *Adapter, *httptest.Server) {
	t.Helper()

	reg := hub.NewRegistry()
	a := NewAdapter(reg, cfg, nil)
	srv := httptest.NewServer(a)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
		srv.Close()
	})
	return reg, a, srv
}

func testConfig() Config {
	return Config{
		WriteTimeout:    2 * time.Second,
		ReadIdleTimeout: 10 * time.Second,
		PingInterval:    1 * time.Second,
	}
}

// testClient drives one device over a real WebSocket connection, speaking
// the wire protocol literally.
type testClient struct {
	t  *testing.T
	ws *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *testClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return &testClient{t: t, ws: ws}
}

func (c *testClient) send(frame map[string]any) {
	c.t.Helper()
	require.NoError(c.t, c.ws.WriteJSON(frame))
}

func (c *testClient) sendRaw(frame string) {
	c.t.Helper()
	require.NoError(c.t, c.ws.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func (c *testClient) sendChunk(fileID string, payload []byte) {
	c.t.Helper()
	frame, err := protocol.EncodeBinaryFrame(fileID, payload)
	require.NoError(c.t, err)
	require.NoError(c.t, c.ws.WriteMessage(websocket.BinaryMessage, frame))
}

func (c *testClient) read() (int, []byte) {
	c.t.Helper()
	require.NoError(c.t, c.ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	messageType, frame, err := c.ws.ReadMessage()
	require.NoError(c.t, err, "expected a frame before the read deadline")
	return messageType, frame
}

// expect reads the next frame and requires it to be a control frame of the
// given type.
func (c *testClient) expect(frameType string) map[string]any {
	c.t.Helper()

	messageType, frame := c.read()
	require.Equal(c.t, websocket.TextMessage, messageType, "expected a control frame")
	var decoded map[string]any
	require.NoError(c.t, json.Unmarshal(frame, &decoded))
	require.Equal(c.t, frameType, decoded["type"], "unexpected frame: %s", frame)
	return decoded
}

// expectChunk reads the next frame and requires it to be a binary data
// frame, returning the decoded file id and payload.
func (c *testClient) expectChunk() (string, []byte) {
	c.t.Helper()

	messageType, frame := c.read()
	require.Equal(c.t, websocket.BinaryMessage, messageType, "expected a data frame")
	fileID, payload, err := protocol.DecodeBinaryFrame(frame)
	require.NoError(c.t, err)
	return fileID, payload
}

// expectPongFence proves the frames sent so far produced no reply: the pong
// answering this ping must be the very next frame on the connection, since
// per-connection replies are ordered.
func (c *testClient) expectPongFence() {
	c.t.Helper()
	c.send(map[string]any{"type": "ping"})
	c.expect("pong")
}

// createSession registers the client as the first member of a new session
// and returns the session code and device id.
func (c *testClient) createSession(name, deviceType string) (code, deviceID string) {
	c.t.Helper()

	c.send(map[string]any{
		"type":       "create_session",
		"deviceName": name,
		"deviceType": deviceType,
	})
	created := c.expect("session_created")
	code, _ = created["sessionCode"].(string)
	deviceID, _ = created["deviceId"].(string)
	require.Len(c.t, code, hub.SessionCodeLength)
	require.NotEmpty(c.t, deviceID)
	return code, deviceID
}

// joinSession joins an existing session and returns the device id.
func (c *testClient) joinSession(code, name, deviceType string) string {
	c.t.Helper()

	c.send(map[string]any{
		"type":        "join_session",
		"sessionCode": code,
		"deviceName":  name,
		"deviceType":  deviceType,
	})
	joined := c.expect("session_joined")
	require.Equal(c.t, code, joined["sessionCode"])
	deviceID, _ := joined["deviceId"].(string)
	require.NotEmpty(c.t, deviceID)
	return deviceID
}

// uploadFile runs the whole upload sequence in one chunk and returns the
// file id.
func (c *testClient) uploadFile(name, mimeType string, content []byte) string {
	c.t.Helper()

	c.send(map[string]any{
		"type":     "file_start",
		"fileName": name,
		"fileSize": len(content),
		"mimeType": mimeType,
	})
	ack := c.expect("file_start_ack")
	fileID, _ := ack["fileId"].(string)
	require.Len(c.t, fileID, protocol.FileIDSize)

	if len(content) > 0 {
		c.sendChunk(fileID, content)
		progress := c.expect("upload_progress")
		require.EqualValues(c.t, 100, progress["progress"])
	}

	c.send(map[string]any{"type": "file_complete", "fileId": fileID})
	c.expect("file_complete_ack")
	return fileID
}

// downloadFile runs a request_file sequence and returns the reassembled
// bytes.
func (c *testClient) downloadFile(fileID string) []byte {
	c.t.Helper()

	c.send(map[string]any{"type": "request_file", "fileId": fileID})
	start := c.expect("file_download_start")
	require.Equal(c.t, fileID, start["fileId"])

	size := int64(start["fileSize"].(float64))
	data := make([]byte, 0, size)
	for int64(len(data)) < size {
		id, payload := c.expectChunk()
		require.Equal(c.t, fileID, id)
		require.LessOrEqual(c.t, len(payload), DownloadChunkSize)
		data = append(data, payload...)
	}

	done := c.expect("file_download_complete")
	require.Equal(c.t, fileID, done["fileId"])
	return data
}

// testPattern builds deterministic file content of the given length.
func testPattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// ============================================================================
// Session lifecycle
// ============================================================================

func TestCreateAndJoinSession(t *testing.T) {
	t.Parallel()
	reg, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	a.send(map[string]any{
		"type":       "create_session",
		"deviceName": "Mac",
		"deviceType": "mac",
	})
	created := a.expect("session_created")
	code := created["sessionCode"].(string)
	require.Len(t, code, hub.SessionCodeLength)
	assert.EqualValues(t, 1, created["connectedDevices"])
	assert.NotEmpty(t, created["deviceId"])

	// Codes are case-insensitive on join.
	b := dial(t, srv)
	b.send(map[string]any{
		"type":        "join_session",
		"sessionCode": strings.ToLower(code),
		"deviceName":  "iPhone",
		"deviceType":  "iphone",
	})
	joined := b.expect("session_joined")
	assert.Equal(t, code, joined["sessionCode"])
	assert.EqualValues(t, 2, joined["connectedDevices"])

	// The creator is told about the newcomer.
	deviceJoined := a.expect("device_joined")
	assert.Equal(t, joined["deviceId"], deviceJoined["deviceId"])
	assert.Equal(t, "iPhone", deviceJoined["deviceName"])
	assert.Equal(t, "iphone", deviceJoined["deviceType"])
	assert.EqualValues(t, 2, deviceJoined["totalDevices"])

	// No files yet, so the joiner must not have received existing_files.
	b.expectPongFence()

	assert.Equal(t, 1, reg.SessionCount())
	assert.Equal(t, 2, reg.DeviceCount())
}

func TestJoinUnknownSessionCode(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	c := dial(t, srv)
	c.send(map[string]any{
		"type":        "join_session",
		"sessionCode": "ZZZZZZ",
		"deviceName":  "Pixel",
		"deviceType":  "android",
	})
	errFrame := c.expect("session_error")
	assert.Contains(t, errFrame["error"], "Session not found")

	// The connection survives the failed join and can still create.
	c.createSession("Pixel", "android")
}

func TestSecondCreateIsIgnored(t *testing.T) {
	t.Parallel()
	reg, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	_, deviceID := a.createSession("Mac", "mac")

	a.send(map[string]any{
		"type":       "create_session",
		"deviceName": "Mac",
		"deviceType": "mac",
	})
	a.expectPongFence()

	// Still a member of the original session, and no second session exists.
	assert.Equal(t, 1, reg.SessionCount())
	assert.True(t, reg.InSession(deviceID))
}

func TestDisconnectBroadcastsDeviceLeft(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	code, _ := a.createSession("Mac", "mac")

	b := dial(t, srv)
	bID := b.joinSession(code, "iPhone", "iphone")
	a.expect("device_joined")

	require.NoError(t, b.ws.Close())

	left := a.expect("device_left")
	assert.Equal(t, bID, left["deviceId"])
	assert.EqualValues(t, 1, left["totalDevices"])
}

func TestDeviceNameAndTypeAreNormalized(t *testing.T) {
	t.Parallel()
	reg, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	// Whitespace-only name and an unrecognised platform hint.
	a.send(map[string]any{
		"type":       "create_session",
		"deviceName": "   ",
		"deviceType": "Amiga",
	})
	a.expect("session_created")

	devices := reg.Devices()
	require.Len(t, devices, 1)
	assert.Equal(t, hub.DefaultDeviceName, devices[0].Name())
	assert.Equal(t, hub.DeviceTypeUnknown, devices[0].Type())
}

// ============================================================================
// Transfers
// ============================================================================

func TestUploadFanoutDownload(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	code, _ := a.createSession("Mac", "mac")
	b := dial(t, srv)
	b.joinSession(code, "iPhone", "iphone")
	a.expect("device_joined")

	// Upload from A, asserting each frame of the sequence.
	a.send(map[string]any{
		"type":     "file_start",
		"fileName": "hi.txt",
		"fileSize": 5,
		"mimeType": "text/plain",
	})
	ack := a.expect("file_start_ack")
	fileID := ack["fileId"].(string)
	require.Len(t, fileID, protocol.FileIDSize)
	assert.Equal(t, "hi.txt", ack["fileName"])

	a.sendChunk(fileID, []byte("hello"))
	progress := a.expect("upload_progress")
	assert.Equal(t, fileID, progress["fileId"])
	assert.EqualValues(t, 100, progress["progress"])
	assert.EqualValues(t, 5, progress["received"])
	assert.EqualValues(t, 5, progress["total"])

	a.send(map[string]any{"type": "file_complete", "fileId": fileID})

	// The peer learns about the file; the uploader only gets the ack.
	newFile := b.expect("new_file")
	meta := newFile["file"].(map[string]any)
	assert.Equal(t, fileID, meta["id"])
	assert.Equal(t, "hi.txt", meta["originalName"])
	assert.EqualValues(t, 5, meta["size"])
	assert.Equal(t, "text/plain", meta["mimetype"])

	completeAck := a.expect("file_complete_ack")
	assert.Equal(t, fileID, completeAck["fileId"])
	a.expectPongFence() // uploader must not see its own new_file

	// Download from B.
	assert.Equal(t, []byte("hello"), b.downloadFile(fileID))
}

func TestUploadProgressAcrossChunks(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	a.createSession("Mac", "mac")

	content := testPattern(150000)
	a.send(map[string]any{
		"type":     "file_start",
		"fileName": "big.bin",
		"fileSize": len(content),
		"mimeType": "application/octet-stream",
	})
	fileID := a.expect("file_start_ack")["fileId"].(string)

	a.sendChunk(fileID, content[:100000])
	progress := a.expect("upload_progress")
	assert.EqualValues(t, 67, progress["progress"]) // round(100000/150000*100)
	assert.EqualValues(t, 100000, progress["received"])

	a.sendChunk(fileID, content[100000:])
	progress = a.expect("upload_progress")
	assert.EqualValues(t, 100, progress["progress"])
	assert.EqualValues(t, 150000, progress["received"])

	a.send(map[string]any{"type": "file_complete", "fileId": fileID})
	a.expect("file_complete_ack")
}

func TestJoinerReceivesCatalogAndDownloadsIntact(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	code, _ := a.createSession("Mac", "mac")
	content := testPattern(150000)
	fileID := a.uploadFile("big.bin", "application/octet-stream", content)

	// A device joining later is caught up on the sealed catalog.
	b := dial(t, srv)
	b.joinSession(code, "iPhone", "iphone")
	existing := b.expect("existing_files")
	files := existing["files"].([]any)
	require.Len(t, files, 1)
	meta := files[0].(map[string]any)
	assert.Equal(t, fileID, meta["id"])
	assert.Equal(t, "big.bin", meta["originalName"])

	// The bytes survive the chunked round trip in order.
	data := b.downloadFile(fileID)
	require.Equal(t, len(content), len(data))
	assert.Equal(t, content, data)
}

func TestZeroByteFile(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	a.createSession("Mac", "mac")

	a.send(map[string]any{
		"type":     "file_start",
		"fileName": "empty.txt",
		"fileSize": 0,
		"mimeType": "text/plain",
	})
	fileID := a.expect("file_start_ack")["fileId"].(string)

	// No chunks to send; the upload seals immediately.
	a.send(map[string]any{"type": "file_complete", "fileId": fileID})
	a.expect("file_complete_ack")

	// The download is just the start/complete pair.
	a.send(map[string]any{"type": "request_file", "fileId": fileID})
	start := a.expect("file_download_start")
	assert.EqualValues(t, 0, start["fileSize"])
	a.expect("file_download_complete")
}

func TestDeleteFileBroadcastsToEveryMember(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	code, _ := a.createSession("Mac", "mac")
	b := dial(t, srv)
	b.joinSession(code, "iPhone", "iphone")
	a.expect("device_joined")

	fileID := a.uploadFile("hi.txt", "text/plain", []byte("hello"))
	b.expect("new_file")

	a.send(map[string]any{"type": "delete_file", "fileId": fileID})

	// Unlike new_file, the removal reaches the deleter too.
	removed := a.expect("file_removed")
	assert.Equal(t, fileID, removed["fileId"])
	removed = b.expect("file_removed")
	assert.Equal(t, fileID, removed["fileId"])

	// A request for the deleted id yields nothing, not even an error.
	b.send(map[string]any{"type": "request_file", "fileId": fileID})
	b.expectPongFence()
}

func TestSweepExpiresFilesAndNotifiesMembers(t *testing.T) {
	t.Parallel()
	reg, _, srv := newTestServer(t, testConfig())
	jan := hub.NewJanitor(reg, hub.JanitorConfig{}, nil)

	a := dial(t, srv)
	code, _ := a.createSession("Mac", "mac")
	b := dial(t, srv)
	b.joinSession(code, "iPhone", "iphone")
	a.expect("device_joined")

	fileID := a.uploadFile("hi.txt", "text/plain", []byte("hello"))
	b.expect("new_file")

	// Backdate the upload past the TTL and run one sweep.
	s, ok := reg.Get(code)
	require.True(t, ok)
	f, ok := s.Files().Get(fileID)
	require.True(t, ok)
	f.UploadedAt = time.Now().Add(-31 * time.Minute)

	jan.Sweep(time.Now())

	removed := a.expect("file_removed")
	assert.Equal(t, fileID, removed["fileId"])
	removed = b.expect("file_removed")
	assert.Equal(t, fileID, removed["fileId"])
	assert.Equal(t, 0, s.Files().Count())
}

// ============================================================================
// Protocol robustness
// ============================================================================

func TestFramesRequiringSessionAreIgnoredBeforeJoin(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	c := dial(t, srv)
	c.send(map[string]any{
		"type":     "file_start",
		"fileName": "early.txt",
		"fileSize": 5,
		"mimeType": "text/plain",
	})
	c.send(map[string]any{"type": "request_file", "fileId": "nope"})
	c.sendChunk(strings.Repeat("a", protocol.FileIDSize), []byte("hello"))

	// None of the above produced a reply and the connection still works.
	c.expectPongFence()
	c.createSession("Mac", "mac")
}

func TestMalformedAndUnknownFramesAreIgnored(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	c := dial(t, srv)
	c.createSession("Mac", "mac")

	c.sendRaw("{not json")
	c.sendRaw(`{"type":"reboot_hub"}`)
	// A binary frame shorter than the id prefix.
	require.NoError(t, c.ws.WriteMessage(websocket.BinaryMessage, []byte("tiny")))

	c.expectPongFence()
}

func TestChunkOverflowGetsNoAck(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	a.createSession("Mac", "mac")

	a.send(map[string]any{
		"type":     "file_start",
		"fileName": "small.txt",
		"fileSize": 5,
		"mimeType": "text/plain",
	})
	fileID := a.expect("file_start_ack")["fileId"].(string)

	// Ten bytes against a declared five: the chunk is dropped without
	// progress, and the seal is refused because nothing arrived.
	a.sendChunk(fileID, []byte("0123456789"))
	a.send(map[string]any{"type": "file_complete", "fileId": fileID})
	a.expectPongFence()
}

func TestChunkForUnknownFileIsSilentlyDropped(t *testing.T) {
	t.Parallel()
	_, _, srv := newTestServer(t, testConfig())

	a := dial(t, srv)
	a.createSession("Mac", "mac")

	a.sendChunk(strings.Repeat("f", protocol.FileIDSize), []byte("hello"))
	a.send(map[string]any{"type": "file_complete", "fileId": "no-such-id"})
	a.send(map[string]any{"type": "delete_file", "fileId": "no-such-id"})
	a.expectPongFence()
}

// ============================================================================
// Keepalive and shutdown
// ============================================================================

func TestDeadPeerIsReaped(t *testing.T) {
	reg, _, srv := newTestServer(t, Config{
		WriteTimeout:    time.Second,
		PingInterval:    50 * time.Millisecond,
		ReadIdleTimeout: 200 * time.Millisecond,
	})

	c := dial(t, srv)
	c.createSession("Mac", "mac")
	require.Equal(t, 1, reg.DeviceCount())

	// The client never reads, so it never answers the pings; the idle
	// deadline removes it.
	assert.Eventually(t, func() bool {
		return reg.DeviceCount() == 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRespondingPeerOutlivesIdleTimeout(t *testing.T) {
	reg, _, srv := newTestServer(t, Config{
		WriteTimeout:    time.Second,
		PingInterval:    50 * time.Millisecond,
		ReadIdleTimeout: 200 * time.Millisecond,
	})

	c := dial(t, srv)
	c.createSession("Mac", "mac")

	// Sitting in a read loop processes the pings, and the pongs keep
	// refreshing the idle deadline well past its nominal value.
	deadline := time.Now().Add(800 * time.Millisecond)
	_ = c.ws.SetReadDeadline(deadline)
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			break
		}
	}

	assert.Equal(t, 1, reg.DeviceCount())
}

func TestShutdownDrainsConnections(t *testing.T) {
	t.Parallel()
	reg, a, srv := newTestServer(t, testConfig())

	c1 := dial(t, srv)
	code, _ := c1.createSession("Mac", "mac")
	c2 := dial(t, srv)
	c2.joinSession(code, "iPhone", "iphone")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Shutdown(ctx))

	assert.Equal(t, 0, a.ConnectionCount())
	assert.Equal(t, 0, reg.DeviceCount())

	// Both clients observe the close.
	_ = c1.ws.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := c1.ws.ReadMessage()
	assert.Error(t, err)

	// New connections are refused while draining.
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, _, err = websocket.DefaultDialer.Dial(url, nil)
	assert.ErrorIs(t, err, websocket.ErrBadHandshake)
}

// ============================================================================
// Collaborators
// ============================================================================

type countingStats struct {
	created atomic.Int64
	joined  atomic.Int64
}

func (s *countingStats) RecordSessionCreated() { s.created.Add(1) }
func (s *countingStats) RecordSessionJoined()  { s.joined.Add(1) }

func TestStatsRecorderSeesLifecycle(t *testing.T) {
	t.Parallel()
	_, a, srv := newTestServer(t, testConfig())

	rec := &countingStats{}
	a.SetStatsRecorder(rec)

	c1 := dial(t, srv)
	code, _ := c1.createSession("Mac", "mac")
	c2 := dial(t, srv)
	c2.joinSession(code, "iPhone", "iphone")

	assert.EqualValues(t, 1, rec.created.Load())
	assert.EqualValues(t, 1, rec.joined.Load())
}

func TestCloseLeavesEmptySessionForJanitor(t *testing.T) {
	t.Parallel()
	reg, _, srv := newTestServer(t, testConfig())

	c := dial(t, srv)
	c.createSession("Mac", "mac")
	require.NoError(t, c.ws.Close())

	assert.Eventually(t, func() bool {
		return reg.DeviceCount() == 0 && reg.SessionCount() == 1
	}, 2*time.Second, 20*time.Millisecond)

	// The emptied session stays for the grace period; only the janitor
	// removes it.
	s := reg.Sessions()
	require.Len(t, s, 1)
	_, empty := s[0].EmptySince()
	assert.True(t, empty)
}

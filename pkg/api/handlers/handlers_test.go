package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/stats"
)

type fixedCounter int

func (c fixedCounter) ConnectionCount() int { return int(c) }

// seedSession registers a device and creates a session for it.
func seedSession(t *testing.T, reg *hub.Registry, deviceID, name, dtype string) (*hub.Device, *hub.Session) {
	t.Helper()

	d := hub.NewDevice(deviceID, stubConn{})
	d.SetIdentity(name, dtype)
	reg.RegisterDevice(d)

	sess, err := reg.Create(d)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return d, sess
}

// seedFile uploads and seals one file in the session's store.
func seedFile(t *testing.T, sess *hub.Session, uploaderID, name string, body []byte, mimetype string) *hub.File {
	t.Helper()

	f := sess.Files().Begin(uploaderID, name, int64(len(body)), mimetype)
	if _, err := sess.Files().Append(f.ID, body); err != nil {
		t.Fatalf("Failed to append chunk: %v", err)
	}
	sealed, err := sess.Files().Complete(f.ID)
	if err != nil {
		t.Fatalf("Failed to complete file: %v", err)
	}
	return sealed
}

func TestQRCode_ReturnsDataURI(t *testing.T) {
	handler := NewQRCodeHandler(3000)
	req := httptest.NewRequest("GET", "/api/qrcode", nil)
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp QRCodeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !strings.HasPrefix(resp.QRCode, "data:image/png;base64,") {
		t.Errorf("Expected PNG data URI, got '%.40s'", resp.QRCode)
	}
	if !strings.HasPrefix(resp.URL, "http://") {
		t.Errorf("Expected http URL, got '%s'", resp.URL)
	}
	if !strings.Contains(resp.URL, ":3000") {
		t.Errorf("Expected URL to carry port 3000, got '%s'", resp.URL)
	}
	if resp.IP == "" {
		t.Error("Expected IP to be set")
	}
}

func TestQRCode_SessionParamUppercased(t *testing.T) {
	handler := NewQRCodeHandler(3000)
	req := httptest.NewRequest("GET", "/api/qrcode?session=abc123", nil)
	w := httptest.NewRecorder()

	handler.Generate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp QRCodeResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !strings.HasSuffix(resp.URL, "?session=ABC123") {
		t.Errorf("Expected URL to end with '?session=ABC123', got '%s'", resp.URL)
	}
}

func TestInfo_PrefersConnectionCounter(t *testing.T) {
	reg := hub.NewRegistry()
	seedSession(t, reg, "dev-1", "Phone", hub.DeviceTypeIPhone)

	handler := NewInfoHandler(8080, fixedCounter(7), reg)
	req := httptest.NewRequest("GET", "/api/info", nil)
	w := httptest.NewRecorder()

	handler.Info(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var resp InfoResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.ConnectedDevices != 7 {
		t.Errorf("Expected 7 connected devices, got %d", resp.ConnectedDevices)
	}
	if resp.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", resp.Port)
	}
	if !strings.Contains(resp.URL, resp.IP) {
		t.Errorf("Expected URL to contain IP %s, got '%s'", resp.IP, resp.URL)
	}
}

func TestInfo_FallsBackToRegistry(t *testing.T) {
	reg := hub.NewRegistry()
	seedSession(t, reg, "dev-1", "Phone", hub.DeviceTypeIPhone)

	handler := NewInfoHandler(8080, nil, reg)
	req := httptest.NewRequest("GET", "/api/info", nil)
	w := httptest.NewRecorder()

	handler.Info(w, req)

	var resp InfoResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.ConnectedDevices != 1 {
		t.Errorf("Expected 1 connected device, got %d", resp.ConnectedDevices)
	}
}

func TestInfo_NoCollaborators_ReportsZero(t *testing.T) {
	handler := NewInfoHandler(8080, nil, nil)
	req := httptest.NewRequest("GET", "/api/info", nil)
	w := httptest.NewRecorder()

	handler.Info(w, req)

	var resp InfoResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.ConnectedDevices != 0 {
		t.Errorf("Expected 0 connected devices, got %d", resp.ConnectedDevices)
	}
}

func TestFiles_EmptyRegistry_ReturnsEmptyArray(t *testing.T) {
	handler := NewFilesHandler(hub.NewRegistry())
	req := httptest.NewRequest("GET", "/api/files", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	body := strings.TrimSpace(w.Body.String())
	if body != "[]" {
		t.Errorf("Expected empty JSON array, got '%s'", body)
	}
}

func TestFiles_ListsCompletedFiles(t *testing.T) {
	reg := hub.NewRegistry()
	_, sess := seedSession(t, reg, "dev-1", "Laptop", hub.DeviceTypeMac)
	seedFile(t, sess, "dev-1", "photo.jpg", []byte("fake-jpeg-bytes"), "image/jpeg")

	handler := NewFilesHandler(reg)
	req := httptest.NewRequest("GET", "/api/files", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	var files []protocol.FileMeta
	if err := json.NewDecoder(w.Body).Decode(&files); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(files) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(files))
	}
	if files[0].OriginalName != "photo.jpg" {
		t.Errorf("Expected name 'photo.jpg', got '%s'", files[0].OriginalName)
	}
	if files[0].Size != int64(len("fake-jpeg-bytes")) {
		t.Errorf("Expected size %d, got %d", len("fake-jpeg-bytes"), files[0].Size)
	}
	if files[0].Mimetype != "image/jpeg" {
		t.Errorf("Expected mimetype 'image/jpeg', got '%s'", files[0].Mimetype)
	}
}

func TestDevices_ReportsSessionMembership(t *testing.T) {
	reg := hub.NewRegistry()
	seedSession(t, reg, "dev-1", "Alice's Mac", hub.DeviceTypeMac)

	// A second device connects but never joins a session.
	lurker := hub.NewDevice("dev-2", stubConn{})
	reg.RegisterDevice(lurker)

	handler := NewDevicesHandler(reg)
	req := httptest.NewRequest("GET", "/api/devices", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var devices []DeviceResponse
	if err := json.NewDecoder(w.Body).Decode(&devices); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(devices) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(devices))
	}

	byID := make(map[string]DeviceResponse, len(devices))
	for _, d := range devices {
		byID[d.ID] = d
	}

	member, ok := byID["dev-1"]
	if !ok {
		t.Fatal("Expected dev-1 in response")
	}
	if !member.InSession {
		t.Error("Expected dev-1 to be in a session")
	}
	if member.Name != "Alice's Mac" {
		t.Errorf("Expected name \"Alice's Mac\", got '%s'", member.Name)
	}
	if member.Type != hub.DeviceTypeMac {
		t.Errorf("Expected type '%s', got '%s'", hub.DeviceTypeMac, member.Type)
	}
	if member.ConnectedAt.IsZero() {
		t.Error("Expected connectedAt to be set")
	}

	if byID["dev-2"].InSession {
		t.Error("Expected dev-2 to not be in a session")
	}
}

func TestDevices_EmptyRegistry_ReturnsEmptyArray(t *testing.T) {
	handler := NewDevicesHandler(hub.NewRegistry())
	req := httptest.NewRequest("GET", "/api/devices", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	body := strings.TrimSpace(w.Body.String())
	if body != "[]" {
		t.Errorf("Expected empty JSON array, got '%s'", body)
	}
}

func TestStats_NilStore_ReturnsZeros(t *testing.T) {
	handler := NewStatsHandler(nil)
	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var counters stats.Counters
	if err := json.NewDecoder(w.Body).Decode(&counters); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if counters.TotalUsers != 0 || counters.TotalSessions != 0 {
		t.Errorf("Expected zero counters, got %+v", counters)
	}
}

func TestStats_ReturnsSnapshot(t *testing.T) {
	store := stats.New("")
	store.RecordSessionCreated()
	store.RecordSessionJoined()

	handler := NewStatsHandler(store)
	req := httptest.NewRequest("GET", "/api/stats", nil)
	w := httptest.NewRecorder()

	handler.Get(w, req)

	var counters stats.Counters
	if err := json.NewDecoder(w.Body).Decode(&counters); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if counters.TotalSessions != 1 {
		t.Errorf("Expected 1 total session, got %d", counters.TotalSessions)
	}
	if counters.TotalUsers != 2 {
		t.Errorf("Expected 2 total users, got %d", counters.TotalUsers)
	}
}

package hub

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeConn records every frame sent through it so tests can assert on
// fan-out behaviour.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
}

func (c *fakeConn) Send(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("connection gone")
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *fakeConn) RemoteAddr() string {
	return "192.0.2.1:12345"
}

func (c *fakeConn) sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

// countFrames returns how many recorded frames carry the given type tag.
func (c *fakeConn) countFrames(t *testing.T, frameType string) int {
	t.Helper()
	n := 0
	for _, raw := range c.sent() {
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("Recorded frame is not JSON: %v", err)
		}
		if env.Type == frameType {
			n++
		}
	}
	return n
}

// Helper to create a registered device backed by a fake connection.
func newTestDevice(name string) (*Device, *fakeConn) {
	conn := &fakeConn{}
	d := NewDevice(NewDeviceID(), conn)
	d.SetIdentity(name, DeviceTypeUnknown)
	return d, conn
}

func TestCreateSession(t *testing.T) {
	reg := NewRegistry()
	d, _ := newTestDevice("Mac")

	s, err := reg.Create(d)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(s.Code()) != SessionCodeLength {
		t.Errorf("Expected %d-char code, got %q", SessionCodeLength, s.Code())
	}
	if s.DeviceCount() != 1 {
		t.Errorf("Expected 1 device, got %d", s.DeviceCount())
	}
	if !s.Member(d.ID) {
		t.Error("Expected the creator to be a member")
	}

	// The index must agree with the membership.
	got, ok := reg.Lookup(d.ID)
	if !ok || got != s {
		t.Error("Expected Lookup to return the created session")
	}
	if !reg.InSession(d.ID) {
		t.Error("Expected InSession to report true")
	}
}

func TestCreateWhileInSession(t *testing.T) {
	reg := NewRegistry()
	d, _ := newTestDevice("Mac")

	if _, err := reg.Create(d); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := reg.Create(d); !errors.Is(err, ErrAlreadyInSession) {
		t.Errorf("Expected ErrAlreadyInSession, got %v", err)
	}
}

func TestJoinIsCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	creator, _ := newTestDevice("Mac")
	s, err := reg.Create(creator)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	joiner, _ := newTestDevice("iPhone")
	joined, err := reg.Join(strings.ToLower(s.Code()), joiner)
	if err != nil {
		t.Fatalf("Join with lowercased code failed: %v", err)
	}
	if joined != s {
		t.Error("Expected join to land in the created session")
	}
	if s.DeviceCount() != 2 {
		t.Errorf("Expected 2 devices, got %d", s.DeviceCount())
	}
}

func TestJoinUnknownCode(t *testing.T) {
	reg := NewRegistry()
	d, _ := newTestDevice("iPhone")

	if _, err := reg.Join("ZZZZZZ", d); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestJoinWhileInSession(t *testing.T) {
	reg := NewRegistry()
	a, _ := newTestDevice("A")
	b, _ := newTestDevice("B")

	first, err := reg.Create(a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := reg.Create(b)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := reg.Join(second.Code(), a); !errors.Is(err, ErrAlreadyInSession) {
		t.Errorf("Expected ErrAlreadyInSession, got %v", err)
	}
	// Membership must be untouched by the rejected join.
	if !first.Member(a.ID) || second.Member(a.ID) {
		t.Error("Rejected join must not move the device")
	}
}

func TestLeave(t *testing.T) {
	reg := NewRegistry()
	a, _ := newTestDevice("A")
	b, _ := newTestDevice("B")

	s, err := reg.Create(a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := reg.Join(s.Code(), b); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	left, remaining, err := reg.Leave(b.ID)
	if err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if left != s || remaining != 1 {
		t.Errorf("Expected to leave the session with 1 remaining, got %d", remaining)
	}
	if reg.InSession(b.ID) {
		t.Error("Expected index entry to be gone after leave")
	}
	if _, empty := s.EmptySince(); empty {
		t.Error("Session with a member must not be marked empty")
	}

	if _, remaining, _ := reg.Leave(a.ID); remaining != 0 {
		t.Errorf("Expected 0 remaining, got %d", remaining)
	}
	if _, empty := s.EmptySince(); !empty {
		t.Error("Expected emptyAt to be set when the last device leaves")
	}
}

func TestLeaveFiresEmptyHook(t *testing.T) {
	reg := NewRegistry()

	var mu sync.Mutex
	var emptied []string
	reg.SetEmptyHook(func(code string) {
		mu.Lock()
		defer mu.Unlock()
		emptied = append(emptied, code)
	})

	a, _ := newTestDevice("A")
	b, _ := newTestDevice("B")
	s, err := reg.Create(a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := reg.Join(s.Code(), b); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	reg.Leave(a.ID)
	mu.Lock()
	hookCalls := len(emptied)
	mu.Unlock()
	if hookCalls != 0 {
		t.Fatalf("Hook must not fire while a member remains, fired %d times", hookCalls)
	}

	reg.Leave(b.ID)
	mu.Lock()
	defer mu.Unlock()
	if len(emptied) != 1 || emptied[0] != s.Code() {
		t.Errorf("Expected one hook call with %q, got %v", s.Code(), emptied)
	}
}

func TestLeaveWithoutSession(t *testing.T) {
	reg := NewRegistry()
	s, remaining, err := reg.Leave("ghost")
	if err != nil || s != nil || remaining != 0 {
		t.Errorf("Expected a no-op leave, got session=%v remaining=%d err=%v", s, remaining, err)
	}
}

func TestSessionCodesAreUnique(t *testing.T) {
	reg := NewRegistry()
	seen := make(map[string]bool)
	for range 100 {
		d, _ := newTestDevice("X")
		s, err := reg.Create(d)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if seen[s.Code()] {
			t.Fatalf("Duplicate live session code %q", s.Code())
		}
		seen[s.Code()] = true
	}
	if reg.SessionCount() != 100 {
		t.Errorf("Expected 100 sessions, got %d", reg.SessionCount())
	}
}

func TestRemoveIfEmpty(t *testing.T) {
	reg := NewRegistry()
	d, _ := newTestDevice("A")
	s, err := reg.Create(d)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if reg.RemoveIfEmpty(s.Code()) {
		t.Error("Occupied session must not be removed")
	}

	reg.Leave(d.ID)
	if !reg.RemoveIfEmpty(s.Code()) {
		t.Error("Expected the empty session to be removed")
	}
	// Deletion is idempotent.
	if reg.RemoveIfEmpty(s.Code()) {
		t.Error("Second removal must be a no-op")
	}
	if _, ok := reg.Get(s.Code()); ok {
		t.Error("Expected the session to be gone")
	}
}

func TestRemoveIfEmptySince(t *testing.T) {
	reg := NewRegistry()
	d, _ := newTestDevice("A")
	s, err := reg.Create(d)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	reg.Leave(d.ID)

	// Freshly emptied: not old enough for the sweep path.
	if reg.RemoveIfEmptySince(s.Code(), time.Now().Add(-30*time.Minute)) {
		t.Error("Recently emptied session must survive the sweep")
	}

	// Backdate the emptiness past the TTL.
	s.mu.Lock()
	s.emptyAt = time.Now().Add(-31 * time.Minute)
	s.mu.Unlock()

	if !reg.RemoveIfEmptySince(s.Code(), time.Now().Add(-30*time.Minute)) {
		t.Error("Expected the long-empty session to be removed")
	}
}

func TestDeviceRegistration(t *testing.T) {
	reg := NewRegistry()
	a, _ := newTestDevice("A")
	b, _ := newTestDevice("B")

	reg.RegisterDevice(a)
	reg.RegisterDevice(b)
	if reg.DeviceCount() != 2 {
		t.Errorf("Expected 2 devices, got %d", reg.DeviceCount())
	}

	reg.UnregisterDevice(a.ID)
	if reg.DeviceCount() != 1 {
		t.Errorf("Expected 1 device, got %d", reg.DeviceCount())
	}
	devices := reg.Devices()
	if len(devices) != 1 || devices[0].ID != b.ID {
		t.Errorf("Expected only device B to remain")
	}
}

func TestBroadcast(t *testing.T) {
	reg := NewRegistry()
	a, connA := newTestDevice("A")
	b, connB := newTestDevice("B")
	c, connC := newTestDevice("C")

	s, err := reg.Create(a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := reg.Join(s.Code(), b); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if _, err := reg.Join(s.Code(), c); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	frame := []byte(`{"type":"new_file"}`)
	sent := s.Broadcast(frame, a.ID)
	if sent != 2 {
		t.Errorf("Expected 2 recipients, got %d", sent)
	}
	if len(connA.sent()) != 0 {
		t.Error("Excluded device must not receive the frame")
	}
	if len(connB.sent()) != 1 || len(connC.sent()) != 1 {
		t.Error("Expected every other member to receive exactly one frame")
	}
}

func TestBroadcastSurvivesFailedSend(t *testing.T) {
	reg := NewRegistry()
	a, _ := newTestDevice("A")
	b, connB := newTestDevice("B")
	c, connC := newTestDevice("C")
	connB.fail = true

	s, err := reg.Create(a)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := reg.Join(s.Code(), b); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if _, err := reg.Join(s.Code(), c); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	sent := s.Broadcast([]byte(`{"type":"device_left"}`), a.ID)
	if sent != 1 {
		t.Errorf("Expected 1 successful delivery, got %d", sent)
	}
	if len(connC.sent()) != 1 {
		t.Error("A failing peer must not abort delivery to the others")
	}
}

func TestFilesAggregatesAcrossSessions(t *testing.T) {
	reg := NewRegistry()
	a, _ := newTestDevice("A")
	b, _ := newTestDevice("B")

	s1, _ := reg.Create(a)
	s2, _ := reg.Create(b)
	s1.Files().Begin(a.ID, "one.txt", 0, "text/plain")
	s2.Files().Begin(b.ID, "two.txt", 0, "text/plain")
	s2.Files().Begin(b.ID, "three.txt", 0, "text/plain")

	files := reg.Files()
	if len(files) != 3 {
		t.Errorf("Expected 3 files across sessions, got %d", len(files))
	}
}

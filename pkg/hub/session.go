package hub

import (
	"sync"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
)

// Session groups the devices that share one join code together with the
// files they relay to each other. Membership mutations go through the
// Registry so the device→session index stays in lockstep; the session lock
// only guards the member list and the emptyAt mark.
type Session struct {
	code      string
	createdAt time.Time

	mu      sync.Mutex
	devices []*Device
	emptyAt time.Time

	files *FileStore
}

func newSession(code string) *Session {
	return &Session{
		code:      code,
		createdAt: time.Now(),
		files:     NewFileStore(),
	}
}

// Code returns the join code devices type to enter the session.
func (s *Session) Code() string {
	return s.code
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// Files returns the session's file store.
func (s *Session) Files() *FileStore {
	return s.files
}

// addDevice appends a device in join order and returns the member count.
func (s *Session) addDevice(d *Device) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append(s.devices, d)
	s.emptyAt = time.Time{}
	return len(s.devices)
}

// removeDevice drops a device and returns the remaining member count and
// whether the device was actually a member. When the last device leaves the
// departure time is recorded so the janitor can expire the empty session.
func (s *Session) removeDevice(deviceID string, now time.Time) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.devices {
		if d.ID == deviceID {
			s.devices = append(s.devices[:i], s.devices[i+1:]...)
			if len(s.devices) == 0 {
				s.emptyAt = now
			}
			return len(s.devices), true
		}
	}
	return len(s.devices), false
}

// Devices returns a snapshot of the current members in join order.
func (s *Session) Devices() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// DeviceCount returns the current member count.
func (s *Session) DeviceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices)
}

// Member reports whether the device currently belongs to the session.
func (s *Session) Member(deviceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.devices {
		if d.ID == deviceID {
			return true
		}
	}
	return false
}

// EmptySince returns when the session lost its last device. ok is false
// while the session is occupied.
func (s *Session) EmptySince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emptyAt.IsZero() {
		return time.Time{}, false
	}
	return s.emptyAt, true
}

// Broadcast sends one pre-serialised control frame to every member except
// excludeDeviceID. Membership is snapshotted under the session lock and the
// sends happen outside it, so a slow peer never stalls joins or leaves. A
// failed send is logged and skipped rather than aborting the fan-out; the
// broken connection's own read loop will notice and run the leave path.
// Returns the number of devices the frame was delivered to.
func (s *Session) Broadcast(frame []byte, excludeDeviceID string) int {
	s.mu.Lock()
	targets := make([]*Device, 0, len(s.devices))
	for _, d := range s.devices {
		if d.ID != excludeDeviceID {
			targets = append(targets, d)
		}
	}
	s.mu.Unlock()

	sent := 0
	for _, d := range targets {
		if err := d.Send(frame); err != nil {
			logger.Warn("broadcast send failed",
				logger.SessionCode(s.code),
				logger.DeviceID(d.ID),
				logger.Err(err))
			continue
		}
		sent++
	}
	return sent
}

package hub

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// maxCodeAttempts bounds the retry loop when minting session codes. With a
// 32^6 code space this only trips when the registry is pathologically full
// or the entropy source is broken.
const maxCodeAttempts = 50

// Registry is the authoritative map of live sessions and connected devices.
// It keeps the device→session index in lockstep with session membership:
// every membership change updates both under the registry lock. The lock
// hierarchy is registry lock, then session lock, then connection write lock,
// always acquired in that order.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	index    map[string]string // device id → session code
	devices  map[string]*Device

	// onEmpty is invoked, outside all locks, with the code of a session
	// that just lost its last member. The janitor installs its one-shot
	// delete-if-still-empty check here.
	onEmpty func(code string)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		index:    make(map[string]string),
		devices:  make(map[string]*Device),
	}
}

// SetEmptyHook installs the callback invoked when a session becomes empty.
// It must be set before connections are accepted.
func (r *Registry) SetEmptyHook(fn func(code string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEmpty = fn
}

// RegisterDevice records a freshly connected device so it shows up on the
// device listing even before it creates or joins a session.
func (r *Registry) RegisterDevice(d *Device) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[d.ID] = d
}

// UnregisterDevice forgets a disconnected device. Callers run Leave first so
// session membership never references a gone device.
func (r *Registry) UnregisterDevice(deviceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.devices, deviceID)
}

// Create mints a unique session code, builds the session with the device as
// its first member, and indexes the device. The creator is alone so there is
// nothing to broadcast.
func (r *Registry) Create(d *Device) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if code, ok := r.index[d.ID]; ok {
		return nil, fmt.Errorf("device %q is in session %q: %w", d.ID, code, ErrAlreadyInSession)
	}

	code, err := r.mintCode()
	if err != nil {
		return nil, err
	}

	s := newSession(code)
	s.addDevice(d)
	r.sessions[code] = s
	r.index[d.ID] = code
	return s, nil
}

// mintCode draws session codes until one is unused. Caller holds mu.
func (r *Registry) mintCode() (string, error) {
	for range maxCodeAttempts {
		code, err := NewSessionCode()
		if err != nil {
			return "", err
		}
		if _, taken := r.sessions[code]; !taken {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// Join adds a device to the session with the given code. Codes match
// case-insensitively: they are uppercased before lookup so a code typed in
// lowercase on a phone still works. An unknown code returns
// ErrSessionNotFound and the caller's connection stays open.
func (r *Registry) Join(code string, d *Device) (*Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	r.mu.Lock()
	defer r.mu.Unlock()

	if have, ok := r.index[d.ID]; ok {
		return nil, fmt.Errorf("device %q is in session %q: %w", d.ID, have, ErrAlreadyInSession)
	}

	s, ok := r.sessions[code]
	if !ok {
		return nil, fmt.Errorf("no session with code %q: %w", code, ErrSessionNotFound)
	}

	s.addDevice(d)
	r.index[d.ID] = code
	return s, nil
}

// Leave removes a device from its session, if any, and returns the session
// and the remaining member count so the caller can broadcast device_left.
// When the session becomes empty its departure time is recorded and the
// empty hook fires so a delayed delete-if-still-empty check gets scheduled.
// Leaving while not in a session is not an error; it returns a nil session.
func (r *Registry) Leave(deviceID string) (*Session, int, error) {
	r.mu.Lock()

	code, ok := r.index[deviceID]
	if !ok {
		r.mu.Unlock()
		return nil, 0, nil
	}
	delete(r.index, deviceID)

	s := r.sessions[code]
	if s == nil {
		// Index said the device was in a session that no longer exists;
		// repair the index and carry on.
		r.mu.Unlock()
		logger.Warn("device index pointed at a dead session",
			logger.DeviceID(deviceID),
			logger.SessionCode(code))
		return nil, 0, nil
	}

	remaining, _ := s.removeDevice(deviceID, time.Now())
	hook := r.onEmpty
	r.mu.Unlock()

	if remaining == 0 && hook != nil {
		hook(code)
	}
	return s, remaining, nil
}

// Lookup returns the session a device currently belongs to.
func (r *Registry) Lookup(deviceID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code, ok := r.index[deviceID]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[code]
	return s, ok
}

// Get returns the session with the given code, matching case-insensitively.
func (r *Registry) Get(code string) (*Session, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

// InSession reports whether the device currently belongs to a session.
func (r *Registry) InSession(deviceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.index[deviceID]
	return ok
}

// Sessions returns a snapshot of all live sessions in no particular order.
func (r *Registry) Sessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Devices returns a snapshot of every connected device, registered or not.
func (r *Registry) Devices() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

// SessionCount returns the number of live sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// DeviceCount returns the number of connected devices.
func (r *Registry) DeviceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Files returns metadata for every buffered file across all sessions.
func (r *Registry) Files() []protocol.FileMeta {
	out := []protocol.FileMeta{}
	for _, s := range r.Sessions() {
		out = append(out, s.Files().List()...)
	}
	return out
}

// RemoveIfEmpty deletes the session with the given code if it has no
// members, reporting whether a deletion happened. Deleting an already gone
// session is a no-op, which is what makes the janitor's redundant cleanup
// paths harmless.
func (r *Registry) RemoveIfEmpty(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[code]
	if !ok {
		return false
	}
	if s.DeviceCount() > 0 {
		return false
	}
	delete(r.sessions, code)
	return true
}

// RemoveIfEmptySince deletes the session if it has been empty since before
// the cutoff, reporting whether a deletion happened.
func (r *Registry) RemoveIfEmptySince(code string, cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[code]
	if !ok {
		return false
	}
	emptyAt, empty := s.EmptySince()
	if !empty || emptyAt.After(cutoff) {
		return false
	}
	delete(r.sessions, code)
	return true
}

package hub

import (
	"strings"
	"sync"
	"time"
)

// Recognised device platform hints. Anything a client declares outside this
// set is reported as unknown.
const (
	DeviceTypeIPhone  = "iphone"
	DeviceTypeAndroid = "android"
	DeviceTypeMac     = "mac"
	DeviceTypeWindows = "windows"
	DeviceTypeUnknown = "unknown"
)

// DefaultDeviceName is used when a device registers with an empty or
// whitespace-only name.
const DefaultDeviceName = "Unknown Device"

// Conn is the hub's view of a device's transport connection. Send delivers
// one serialised control frame; implementations must serialise concurrent
// senders so frames never interleave on the wire.
type Conn interface {
	Send(frame []byte) error
	RemoteAddr() string
}

// Device is one connected peer. The id is minted when the transport is
// upgraded and never changes; name and platform hint arrive later with the
// first create_session or join_session frame, so a device can be connected
// but still anonymous.
type Device struct {
	ID          string
	ConnectedAt time.Time

	conn Conn

	mu    sync.RWMutex
	name  string
	dtype string
}

// NewDevice wraps a freshly upgraded connection in a Device.
func NewDevice(id string, conn Conn) *Device {
	return &Device{
		ID:          id,
		ConnectedAt: time.Now(),
		conn:        conn,
		dtype:       DeviceTypeUnknown,
	}
}

// SetIdentity records the name and platform hint the device declared.
// Callers are expected to normalise both values first.
func (d *Device) SetIdentity(name, deviceType string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
	d.dtype = deviceType
}

// Name returns the declared display name, or the empty string before the
// device has registered.
func (d *Device) Name() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// Type returns the declared platform hint, defaulting to unknown.
func (d *Device) Type() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.dtype
}

// Send hands one serialised control frame to the device's connection.
func (d *Device) Send(frame []byte) error {
	return d.conn.Send(frame)
}

// RemoteAddr reports the peer address of the underlying connection.
func (d *Device) RemoteAddr() string {
	return d.conn.RemoteAddr()
}

// NormalizeDeviceType maps a client-declared platform hint onto one of the
// recognised values. Matching is case-insensitive; unrecognised hints become
// unknown rather than an error.
func NormalizeDeviceType(deviceType string) string {
	switch strings.ToLower(strings.TrimSpace(deviceType)) {
	case DeviceTypeIPhone:
		return DeviceTypeIPhone
	case DeviceTypeAndroid:
		return DeviceTypeAndroid
	case DeviceTypeMac:
		return DeviceTypeMac
	case DeviceTypeWindows:
		return DeviceTypeWindows
	default:
		return DeviceTypeUnknown
	}
}

// NormalizeDeviceName trims a declared name and caps it at maxRunes runes so
// a hostile client cannot bloat broadcast frames. An empty result falls back
// to DefaultDeviceName.
func NormalizeDeviceName(name string, maxRunes int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultDeviceName
	}
	if maxRunes > 0 {
		if runes := []rune(name); len(runes) > maxRunes {
			name = strings.TrimSpace(string(runes[:maxRunes]))
		}
	}
	if name == "" {
		return DefaultDeviceName
	}
	return name
}

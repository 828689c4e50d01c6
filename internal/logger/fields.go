package logger

import "log/slog"

// Standard field keys for structured logging. Use these consistently across
// all log statements so lines can be grepped and aggregated by key.
const (
	// Connection and device identity
	KeyRemoteAddr = "remote_addr" // peer address of the socket
	KeyDeviceID   = "device_id"   // hub-assigned device identifier
	KeyDeviceName = "device_name" // client-declared display name
	KeyDeviceType = "device_type" // client-declared platform hint

	// Session
	KeySessionCode = "session_code" // six character join code
	KeyDevices     = "devices"      // device count in a session
	KeySessions    = "sessions"     // session count in the registry

	// Files and transfers
	KeyFileID   = "file_id"
	KeyFileName = "file_name"
	KeyMimeType = "mime_type"
	KeySize     = "size"     // declared size in bytes
	KeyReceived = "received" // bytes ingested so far
	KeyFiles    = "files"    // file count in a session

	// Protocol
	KeyFrame     = "frame"      // control frame type tag
	KeyFrameSize = "frame_size" // raw frame length in bytes

	// Operation metadata
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
	KeyComponent  = "component"

	// Server
	KeyAddr = "addr"
	KeyPath = "path"
)

// Field constructors for type safety.

// RemoteAddr returns a slog.Attr for the socket peer address
func RemoteAddr(addr string) slog.Attr {
	return slog.String(KeyRemoteAddr, addr)
}

// DeviceID returns a slog.Attr for a hub-assigned device id
func DeviceID(id string) slog.Attr {
	return slog.String(KeyDeviceID, id)
}

// DeviceName returns a slog.Attr for a device display name
func DeviceName(name string) slog.Attr {
	return slog.String(KeyDeviceName, name)
}

// DeviceTypeAttr returns a slog.Attr for a device platform hint
func DeviceTypeAttr(t string) slog.Attr {
	return slog.String(KeyDeviceType, t)
}

// SessionCode returns a slog.Attr for a session join code
func SessionCode(code string) slog.Attr {
	return slog.String(KeySessionCode, code)
}

// Devices returns a slog.Attr for a device count
func Devices(n int) slog.Attr {
	return slog.Int(KeyDevices, n)
}

// Sessions returns a slog.Attr for a session count
func Sessions(n int) slog.Attr {
	return slog.Int(KeySessions, n)
}

// FileID returns a slog.Attr for a file identifier
func FileID(id string) slog.Attr {
	return slog.String(KeyFileID, id)
}

// FileName returns a slog.Attr for an original file name
func FileName(name string) slog.Attr {
	return slog.String(KeyFileName, name)
}

// MimeType returns a slog.Attr for a declared MIME type
func MimeType(mt string) slog.Attr {
	return slog.String(KeyMimeType, mt)
}

// Size returns a slog.Attr for a declared size in bytes
func Size(n int64) slog.Attr {
	return slog.Int64(KeySize, n)
}

// Received returns a slog.Attr for bytes ingested so far
func Received(n int64) slog.Attr {
	return slog.Int64(KeyReceived, n)
}

// Files returns a slog.Attr for a file count
func Files(n int) slog.Attr {
	return slog.Int(KeyFiles, n)
}

// Frame returns a slog.Attr for a control frame type tag
func Frame(t string) slog.Attr {
	return slog.String(KeyFrame, t)
}

// FrameSize returns a slog.Attr for a raw frame length
func FrameSize(n int) slog.Attr {
	return slog.Int(KeyFrameSize, n)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// Component returns a slog.Attr naming the subsystem that produced the line
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Addr returns a slog.Attr for a listen address
func Addr(addr string) slog.Attr {
	return slog.String(KeyAddr, addr)
}

// Path returns a slog.Attr for a filesystem path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Package protocol defines the relay wire format: JSON control frames
// exchanged as WebSocket text messages and the fixed-prefix binary frames
// that carry file bytes. Keys are camelCase on the wire.
package protocol

import (
	"encoding/json"
	"math"
	"time"
)

// Control frame types sent by clients.
const (
	TypeCreateSession = "create_session"
	TypeJoinSession   = "join_session"
	TypeFileStart     = "file_start"
	TypeFileComplete  = "file_complete"
	TypeRequestFile   = "request_file"
	TypeDeleteFile    = "delete_file"
	TypePing          = "ping"
)

// Control frame types sent by the hub.
const (
	TypeSessionCreated       = "session_created"
	TypeSessionJoined        = "session_joined"
	TypeSessionError         = "session_error"
	TypeDeviceJoined         = "device_joined"
	TypeDeviceLeft           = "device_left"
	TypeExistingFiles        = "existing_files"
	TypeNewFile              = "new_file"
	TypeFileStartAck         = "file_start_ack"
	TypeUploadProgress       = "upload_progress"
	TypeFileCompleteAck      = "file_complete_ack"
	TypeFileDownloadStart    = "file_download_start"
	TypeFileDownloadComplete = "file_download_complete"
	TypeFileRemoved          = "file_removed"
	TypePong                 = "pong"
)

// Inbound is the union decode of every client control frame. The type tag
// says which of the remaining fields are meaningful; absent fields decode to
// their zero values, and handlers validate what they use.
type Inbound struct {
	Type        string `json:"type"`
	DeviceName  string `json:"deviceName"`
	DeviceType  string `json:"deviceType"`
	SessionCode string `json:"sessionCode"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	MimeType    string `json:"mimeType"`
	FileID      string `json:"fileId"`
}

// FileMeta is the metadata view of a buffered file, shared by the wire
// catalog frames and the HTTP file listing. Bytes never appear here; they
// travel only through request_file.
type FileMeta struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	Mimetype     string    `json:"mimetype"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// SessionCreated answers create_session.
type SessionCreated struct {
	Type             string `json:"type"`
	SessionCode      string `json:"sessionCode"`
	DeviceID         string `json:"deviceId"`
	ConnectedDevices int    `json:"connectedDevices"`
}

// SessionJoined answers a successful join_session.
type SessionJoined struct {
	Type             string `json:"type"`
	SessionCode      string `json:"sessionCode"`
	DeviceID         string `json:"deviceId"`
	ConnectedDevices int    `json:"connectedDevices"`
}

// SessionError reports a failed create or join. The connection stays open.
type SessionError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// DeviceJoined announces a new member to the devices already in the session.
type DeviceJoined struct {
	Type         string `json:"type"`
	DeviceID     string `json:"deviceId"`
	DeviceName   string `json:"deviceName"`
	DeviceType   string `json:"deviceType"`
	TotalDevices int    `json:"totalDevices"`
}

// DeviceLeft announces a departure to the remaining members.
type DeviceLeft struct {
	Type         string `json:"type"`
	DeviceID     string `json:"deviceId"`
	TotalDevices int    `json:"totalDevices"`
}

// ExistingFiles catches a joiner up on the session's sealed files. It is
// only sent when the catalog is non-empty.
type ExistingFiles struct {
	Type  string     `json:"type"`
	Files []FileMeta `json:"files"`
}

// NewFile announces a freshly sealed file to everyone but its uploader.
type NewFile struct {
	Type string   `json:"type"`
	File FileMeta `json:"file"`
}

// FileStartAck answers file_start with the id the uploader must prefix its
// binary chunks with.
type FileStartAck struct {
	Type     string `json:"type"`
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

// UploadProgress acknowledges one ingested chunk.
type UploadProgress struct {
	Type     string `json:"type"`
	FileID   string `json:"fileId"`
	Progress int    `json:"progress"`
	Received int64  `json:"received"`
	Total    int64  `json:"total"`
}

// FileCompleteAck answers file_complete after the upload sealed.
type FileCompleteAck struct {
	Type   string `json:"type"`
	FileID string `json:"fileId"`
}

// FileDownloadStart opens a download stream. The data frames that follow it
// arrive in contiguous byte order with nothing interleaved.
type FileDownloadStart struct {
	Type     string `json:"type"`
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

// FileDownloadComplete closes a download stream.
type FileDownloadComplete struct {
	Type   string `json:"type"`
	FileID string `json:"fileId"`
}

// FileRemoved announces that a file left the catalog, whether by delete_file
// or by TTL expiry. Unlike new_file it reaches every member.
type FileRemoved struct {
	Type   string `json:"type"`
	FileID string `json:"fileId"`
}

// Pong answers the application-level ping.
type Pong struct {
	Type string `json:"type"`
}

// Encode serialises one control frame for the wire.
func Encode(frame any) ([]byte, error) {
	return json.Marshal(frame)
}

// ProgressPercent reports received bytes against the declared total as a
// rounded whole percentage. A zero or negative total reads as complete,
// which keeps zero-byte files sensible.
func ProgressPercent(received, total int64) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(received) / float64(total) * 100))
}

package apiclient

import "time"

// HealthStatus is the hub's health probe response.
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// HubInfo describes how to reach the hub on the LAN.
type HubInfo struct {
	IP               string `json:"ip"`
	Port             int    `json:"port"`
	URL              string `json:"url"`
	ConnectedDevices int    `json:"connectedDevices"`
}

// QRCode is a scannable join link for the hub.
type QRCode struct {
	QRCode string `json:"qrCode"`
	URL    string `json:"url"`
	IP     string `json:"ip"`
}

// Stats are the hub's lifetime usage counters.
type Stats struct {
	TotalUsers    int64 `json:"totalUsers"`
	TotalSessions int64 `json:"totalSessions"`
}

// FileInfo is the metadata of one buffered file.
type FileInfo struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	Mimetype     string    `json:"mimetype"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// DeviceInfo describes one connected device.
type DeviceInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	ConnectedAt time.Time `json:"connectedAt"`
	InSession   bool      `json:"inSession"`
}

// Health returns the hub's liveness report.
func (c *Client) Health() (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get("/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Readiness returns the hub's readiness report.
func (c *Client) Readiness() (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get("/health/ready", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Info returns the hub's LAN address and connection count.
func (c *Client) Info() (*HubInfo, error) {
	var info HubInfo
	if err := c.get("/api/info", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// QRCode returns the hub's join link rendered as a QR code, optionally
// pre-filled with a session code.
func (c *Client) QRCode(sessionCode string) (*QRCode, error) {
	path := "/api/qrcode"
	if sessionCode != "" {
		path += "?session=" + sessionCode
	}
	var qr QRCode
	if err := c.get(path, &qr); err != nil {
		return nil, err
	}
	return &qr, nil
}

// Stats returns the hub's lifetime usage counters.
func (c *Client) Stats() (*Stats, error) {
	var stats Stats
	if err := c.get("/api/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Files returns metadata for every file the hub is buffering.
func (c *Client) Files() ([]FileInfo, error) {
	var files []FileInfo
	if err := c.get("/api/files", &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Devices returns every device connected to the hub.
func (c *Client) Devices() ([]DeviceInfo, error) {
	var devices []DeviceInfo
	if err := c.get("/api/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// feedbackRequest is the POST /api/feedback body.
type feedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// SendFeedback submits a rating with optional free-form text.
func (c *Client) SendFeedback(rating int, text string) error {
	return c.post("/api/feedback", feedbackRequest{Rating: rating, Feedback: text}, nil)
}

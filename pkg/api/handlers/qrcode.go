package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/netutil"
)

// QRCodeHandler renders the hub URL as a scannable QR code so phones can
// join without typing a LAN address.
type QRCodeHandler struct {
	port int
}

// NewQRCodeHandler creates a new QR code handler.
func NewQRCodeHandler(port int) *QRCodeHandler {
	return &QRCodeHandler{port: port}
}

// QRCodeResponse is the payload for GET /api/qrcode.
type QRCodeResponse struct {
	QRCode string `json:"qrCode"`
	URL    string `json:"url"`
	IP     string `json:"ip"`
}

// Generate encodes the hub URL (optionally carrying a session code) as a
// base64 PNG data URI.
func (h *QRCodeHandler) Generate(w http.ResponseWriter, r *http.Request) {
	url := netutil.BaseURL(h.port)
	if code := strings.ToUpper(r.URL.Query().Get("session")); code != "" {
		url += "?session=" + code
	}

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		InternalServerError(w, "failed to generate QR code: "+err.Error())
		return
	}

	WriteJSONOK(w, QRCodeResponse{
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		URL:    url,
		IP:     netutil.LocalIP(),
	})
}

package handlers

import (
	"net/http"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/netutil"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
)

// ConnectionCounter reports the number of open WebSocket connections.
// The transport adapter implements it; handlers only need the count.
type ConnectionCounter interface {
	ConnectionCount() int
}

// InfoHandler serves hub connection details for clients that want to show
// the address or render their own join UI.
type InfoHandler struct {
	port     int
	conns    ConnectionCounter
	registry *hub.Registry
}

// NewInfoHandler creates a new info handler.
func NewInfoHandler(port int, conns ConnectionCounter, registry *hub.Registry) *InfoHandler {
	return &InfoHandler{
		port:     port,
		conns:    conns,
		registry: registry,
	}
}

// InfoResponse is the payload for GET /api/info.
type InfoResponse struct {
	IP               string `json:"ip"`
	Port             int    `json:"port"`
	URL              string `json:"url"`
	ConnectedDevices int    `json:"connectedDevices"`
}

// Info reports the hub's LAN address and how many devices are connected.
func (h *InfoHandler) Info(w http.ResponseWriter, r *http.Request) {
	connected := 0
	switch {
	case h.conns != nil:
		connected = h.conns.ConnectionCount()
	case h.registry != nil:
		connected = h.registry.DeviceCount()
	}

	WriteJSONOK(w, InfoResponse{
		IP:               netutil.LocalIP(),
		Port:             h.port,
		URL:              netutil.BaseURL(h.port),
		ConnectedDevices: connected,
	})
}

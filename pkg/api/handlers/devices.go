package handlers

import (
	"net/http"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
)

// DevicesHandler lists devices currently registered with the hub.
type DevicesHandler struct {
	registry *hub.Registry
}

// NewDevicesHandler creates a new devices handler.
func NewDevicesHandler(registry *hub.Registry) *DevicesHandler {
	return &DevicesHandler{registry: registry}
}

// DeviceResponse is one entry in the GET /api/devices payload.
type DeviceResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	ConnectedAt time.Time `json:"connectedAt"`
	InSession   bool      `json:"inSession"`
}

// List returns every connected device and whether it has joined a session.
func (h *DevicesHandler) List(w http.ResponseWriter, r *http.Request) {
	out := []DeviceResponse{}
	if h.registry != nil {
		for _, d := range h.registry.Devices() {
			out = append(out, DeviceResponse{
				ID:          d.ID,
				Name:        d.Name(),
				Type:        d.Type(),
				ConnectedAt: d.ConnectedAt,
				InSession:   h.registry.InSession(d.ID),
			})
		}
	}

	WriteJSONOK(w, out)
}

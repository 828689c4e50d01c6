package handlers

import (
	"net/http"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	registry  *hub.Registry
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(registry *hub.Registry, version string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		registry:  registry,
		version:   version,
		startedAt: startedAt,
	}
}

// Liveness reports that the process is up. It never inspects shared state,
// so it stays truthful even when the hub is wedged.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	healthyResponse(w, map[string]any{
		"service":    "easetransfer",
		"version":    h.version,
		"uptime":     time.Since(h.startedAt).Round(time.Second).String(),
		"started_at": h.startedAt.UTC().Format(time.RFC3339),
	})
}

// Readiness reports whether the hub can accept relay traffic.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if h.registry == nil {
		unhealthyResponse(w, "session registry not initialized")
		return
	}

	healthyResponse(w, map[string]any{
		"sessions": h.registry.SessionCount(),
		"devices":  h.registry.DeviceCount(),
		"files":    len(h.registry.Files()),
	})
}

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/internal/logger"
)

// Response is the envelope for health endpoint payloads.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
}

// writeJSON encodes the payload to a buffer first so an encoding failure
// can still produce a clean 500 instead of a half-written body.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		logger.Error("failed to encode response", logger.Err(err))
		http.Error(w, `{"status":"error","error":"encoding failure"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func healthyResponse(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Response{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Data:      data,
	})
}

func unhealthyResponse(w http.ResponseWriter, reason string) {
	writeJSON(w, http.StatusServiceUnavailable, Response{
		Status:    "unhealthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error:     reason,
	})
}

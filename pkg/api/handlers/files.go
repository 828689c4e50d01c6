package handlers

import (
	"net/http"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/hub"
	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/protocol"
)

// FilesHandler lists completed files held by the hub.
type FilesHandler struct {
	registry *hub.Registry
}

// NewFilesHandler creates a new files handler.
func NewFilesHandler(registry *hub.Registry) *FilesHandler {
	return &FilesHandler{registry: registry}
}

// List returns metadata for every completed file across all sessions.
// File bytes never leave the relay path; this is inventory only.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	files := []protocol.FileMeta{}
	if h.registry != nil {
		files = h.registry.Files()
	}

	WriteJSONOK(w, files)
}

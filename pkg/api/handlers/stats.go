package handlers

import (
	"net/http"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/stats"
)

// StatsHandler serves lifetime usage counters.
type StatsHandler struct {
	store *stats.Store
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(store *stats.Store) *StatsHandler {
	return &StatsHandler{store: store}
}

// Get returns the cumulative user and session totals.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		WriteJSONOK(w, stats.Counters{})
		return
	}

	WriteJSONOK(w, h.store.Snapshot())
}

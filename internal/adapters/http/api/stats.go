// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// StatsHandler handles stats requests.
type StatsHandler struct {
	reader Reader
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(reader Reader) *StatsHandler {
	return &StatsHandler{reader: reader}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.reader.GetStats(r.Context()))
}

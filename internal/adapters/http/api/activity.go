// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ActivityHandler serves the current activity level.
type ActivityHandler struct {
	reader Reader
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(reader Reader) *ActivityHandler {
	return &ActivityHandler{reader: reader}
}

// HandleGetActivity handles GET /activity requests.
func (h *ActivityHandler) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"channel": h.reader.Channel(),
		"level":   h.reader.Level(r.Context()),
	})
}

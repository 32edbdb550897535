// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// ActiveHandler serves the active set with derived placements.
type ActiveHandler struct {
	reader Reader
}

// NewActiveHandler creates a new active-set handler.
func NewActiveHandler(reader Reader) *ActiveHandler {
	return &ActiveHandler{reader: reader}
}

// HandleGetActive handles GET /active requests. The render layer polls
// this for the message list; per-frame interpolation stays client-side.
func (h *ActiveHandler) HandleGetActive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	active := h.reader.Active(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"channel":  h.reader.Channel(),
		"messages": active,
	})
}

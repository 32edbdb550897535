// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
)

const defaultMaxLimit = 100

// TopHandler serves the channel's best-of history.
type TopHandler struct {
	reader   Reader
	maxLimit int
}

// NewTopHandler creates a new top handler.
func NewTopHandler(reader Reader, maxLimit int) *TopHandler {
	return &TopHandler{reader: reader, maxLimit: maxLimit}
}

// HandleGetTop handles GET /top?limit=N requests.
func (h *TopHandler) HandleGetTop(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_top"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", wrap(op, ErrBadRequest))
		return
	}

	entries, err := h.reader.TopN(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nvake/drift/internal/adapters/transport"
)

// reactionRequest mirrors the request body for POST /reactions. Positive
// and negative are increments; a negative value retracts a reaction.
type reactionRequest struct {
	Channel   string `json:"channel"`
	MessageID string `json:"message_id"`
	Positive  int64  `json:"positive"`
	Negative  int64  `json:"negative"`
}

func (r reactionRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Channel) == "":
		return ErrBadRequest
	case strings.TrimSpace(r.MessageID) == "":
		return ErrBadRequest
	case r.Positive == 0 && r.Negative == 0:
		return ErrBadRequest
	}
	return nil
}

type ackResponse struct {
	Status string `json:"status"`
}

// ReactionsHandler handles reaction write requests.
type ReactionsHandler struct {
	writer Writer
}

// NewReactionsHandler creates a new reactions handler.
func NewReactionsHandler(writer Writer) *ReactionsHandler {
	return &ReactionsHandler{writer: writer}
}

// HandlePostReaction handles POST /reactions requests.
func (h *ReactionsHandler) HandlePostReaction(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_reaction"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}

	err := h.writer.React(r.Context(), req.Channel, req.MessageID, req.Positive, req.Negative)
	if errors.Is(err, transport.ErrUnknownMessage) {
		writeError(w, http.StatusNotFound, "not_found", wrap(op, ErrUnknownMessage))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
		return
	}

	writeJSON(w, http.StatusOK, ackResponse{Status: "applied"})
}

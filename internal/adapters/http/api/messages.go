// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvake/drift/internal/domain/model"
)

// messageRequest mirrors the request body for POST /messages.
type messageRequest struct {
	Channel string `json:"channel"`
	Author  string `json:"author"`
	Text    string `json:"text"`
}

func (m messageRequest) validate() error {
	switch {
	case strings.TrimSpace(m.Channel) == "":
		return wrap("api.post_message", ErrBadRequest)
	case strings.TrimSpace(m.Author) == "":
		return wrap("api.post_message", ErrBadRequest)
	case strings.TrimSpace(m.Text) == "":
		return wrap("api.post_message", ErrBadRequest)
	}
	return nil
}

type messageResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// MessagesHandler handles message write requests.
type MessagesHandler struct {
	writer Writer
	reader Reader
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(writer Writer, reader Reader) *MessagesHandler {
	return &MessagesHandler{writer: writer, reader: reader}
}

// HandlePostMessage handles POST /messages requests. The server mints the
// id and the authoritative creation timestamp; clients never supply either.
func (h *MessagesHandler) HandlePostMessage(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_message"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if req.Channel != h.reader.Channel() {
		writeError(w, http.StatusConflict, "wrong_channel", wrap(op, ErrWrongChannel))
		return
	}

	m := model.Message{
		ID:        uuid.NewString(),
		ChannelID: req.Channel,
		Author:    req.Author,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrap(op, err))
		return
	}
	if err := h.writer.Append(r.Context(), m); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
		return
	}

	writeJSON(w, http.StatusAccepted, messageResponse{ID: m.ID, CreatedAt: m.CreatedAt})
}

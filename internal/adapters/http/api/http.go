// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nvake/drift/internal/adapters/repository"
	session "github.com/nvake/drift/internal/app"
	"github.com/nvake/drift/internal/domain/model"
)

// Writer is the transport-backed write side consumed by the POST handlers.
type Writer interface {
	Append(ctx context.Context, m model.Message) error
	React(ctx context.Context, channel, messageID string, dPositive, dNegative int64) error
}

// Reader exposes session state to the GET handlers. Using an interface
// bundle keeps the handler layer loosely coupled to the session package.
type Reader interface {
	Active(ctx context.Context) []session.Placed
	TopN(ctx context.Context, n int) ([]repository.Entry, error)
	Level(ctx context.Context) int
	Channel() string
	GetStats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the engine API.
type Server struct {
	messagesHandler  *MessagesHandler
	reactionsHandler *ReactionsHandler
	activeHandler    *ActiveHandler
	topHandler       *TopHandler
	activityHandler  *ActivityHandler
	statsHandler     *StatsHandler
	healthHandler    *HealthHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*serverConfig)

type serverConfig struct {
	maxTopLimit int
}

// WithMaxTopLimit caps the limit accepted by GET /top.
func WithMaxTopLimit(n int) ServerOption {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxTopLimit = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(writer Writer, reader Reader, opts ...ServerOption) *Server {
	cfg := serverConfig{maxTopLimit: defaultMaxLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		messagesHandler:  NewMessagesHandler(writer, reader),
		reactionsHandler: NewReactionsHandler(writer),
		activeHandler:    NewActiveHandler(reader),
		topHandler:       NewTopHandler(reader, cfg.maxTopLimit),
		activityHandler:  NewActivityHandler(reader),
		statsHandler:     NewStatsHandler(reader),
		healthHandler:    NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/messages", MetricsMiddleware(s.messagesHandler.HandlePostMessage, "messages"))
	mux.HandleFunc("/reactions", MetricsMiddleware(s.reactionsHandler.HandlePostReaction, "reactions"))
	mux.HandleFunc("/active", MetricsMiddleware(s.activeHandler.HandleGetActive, "active"))
	mux.HandleFunc("/top", MetricsMiddleware(s.topHandler.HandleGetTop, "top"))
	mux.HandleFunc("/activity", MetricsMiddleware(s.activityHandler.HandleGetActivity, "activity"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// wrap annotates an error with the handler operation for logs and bodies.
func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

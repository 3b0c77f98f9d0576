package ws

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Dispatcher receives every decoded inbound event and every disconnect
type Dispatcher interface {
	Dispatch(ctx context.Context, conn model.ConnectionID, env Envelope)
	Disconnect(ctx context.Context, conn model.ConnectionID)
}

// Config holds websocket connection settings
type Config struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	// AllowedOrigins restricts browser origins. Empty allows any.
	AllowedOrigins []string
}

// DefaultConfig returns default websocket settings
func DefaultConfig() Config {
	return Config{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  4096,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Handler upgrades HTTP requests to websocket connections
type Handler struct {
	hub        *Hub
	dispatcher Dispatcher
	cfg        Config
	upgrader   websocket.Upgrader
	clock      clock.Clock
	logger     *slog.Logger
}

// NewHandler creates a new websocket Handler
func NewHandler(hub *Hub, dispatcher Dispatcher, cfg Config, clock clock.Clock, logger *slog.Logger) *Handler {
	defaults := DefaultConfig()
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.ReadTimeout {
		cfg.PingInterval = cfg.ReadTimeout * 9 / 10
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}

	h := &Handler{
		hub:        hub,
		dispatcher: dispatcher,
		cfg:        cfg,
		clock:      clock,
		logger:     logger.With(slog.String("component", "ws")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, model.ConnectionID(uuid.NewString()), conn)
	h.hub.Register(client)
	h.hub.SendTo(client.id, model.NewEvent(model.EventConnected, h.clock.Now(),
		model.ConnectedPayload{ConnectionID: client.id}))

	go client.writePump(h.cfg, h.logger)

	ctx := context.WithoutCancel(r.Context())
	client.readPump(ctx, h.cfg, h.dispatcher, h.logger)

	h.hub.Unregister(client)
	h.dispatcher.Disconnect(ctx, client.id)
}

// checkOrigin allows requests without an Origin header (non-browser
// clients) and any origin when no allow list is configured
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.cfg.AllowedOrigins) == 0 || slices.Contains(h.cfg.AllowedOrigins, "*") {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if strings.EqualFold(allowed, origin) || strings.EqualFold(allowed, u.Host) {
			return true
		}
	}
	return false
}

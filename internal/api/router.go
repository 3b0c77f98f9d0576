package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/handler"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/middleware"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/auth"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/catalog"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/duel"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/presence"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	Catalog        *catalog.Service
	Presence       *presence.Controller
	DuelManager    duel.ManagerInterface
	Hub            *ws.Hub
	WSHandler      http.Handler
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService, cfg.Presence)
	flagHandler := handler.NewFlagHandler(cfg.Catalog)
	healthHandler := handler.NewHealthHandler(
		cfg.Catalog.Count,
		cfg.Presence.Len,
		hubCount(cfg.Hub),
		cfg.DuelManager.Len,
	)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Catalog routes
	api.HandleFunc("/flags", flagHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/flags/{code}", flagHandler.Get).Methods(http.MethodGet)

	// Player routes
	api.HandleFunc("/presence", playerHandler.Online).Methods(http.MethodGet)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)

	// Websocket upgrade lives outside the API prefix and is not request-logged;
	// the ws package logs connection lifetimes itself
	if cfg.WSHandler != nil {
		r.Handle("/ws", recoveryMiddleware(cfg.WSHandler)).Methods(http.MethodGet)
	}

	return middleware.CORS(cfg.AllowedOrigins)(r)
}

func hubCount(hub *ws.Hub) handler.Counter {
	if hub == nil {
		return nil
	}
	return hub.ClientCount
}

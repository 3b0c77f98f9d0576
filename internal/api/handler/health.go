package handler

import (
	"net/http"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/response"
)

// Counter reports the size of a live collection
type Counter func() int

// HealthHandler reports liveness plus a few live counts
type HealthHandler struct {
	flags       Counter
	online      Counter
	connections Counter
	duels       Counter
}

// NewHealthHandler creates a new health handler. Nil counters report 0.
func NewHealthHandler(flags, online, connections, duels Counter) *HealthHandler {
	return &HealthHandler{
		flags:       flags,
		online:      online,
		connections: connections,
		duels:       duels,
	}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:      "ok",
		Flags:       count(h.flags),
		Online:      count(h.online),
		Connections: count(h.connections),
		Duels:       count(h.duels),
	})
}

func count(c Counter) int {
	if c == nil {
		return 0
	}
	return c()
}

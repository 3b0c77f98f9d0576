package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/request"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api/response"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/auth"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/presence"
)

// PlayerHandler handles player-related endpoints
type PlayerHandler struct {
	authService *auth.Service
	presence    presence.ControllerInterface
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(authService *auth.Service, presence presence.ControllerInterface) *PlayerHandler {
	return &PlayerHandler{
		authService: authService,
		presence:    presence,
	}
}

// CreateGuest handles POST /api/v1/players/guest
func (h *PlayerHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, NewInvalidRequestError("invalid request body"))
			return
		}
	}

	name := strings.TrimSpace(req.DisplayName)
	if len(name) > 32 {
		WriteError(w, NewInvalidRequestError("display_name must be at most 32 characters"))
		return
	}
	if name == "" {
		name = h.authService.GuestName()
	}

	token, err := h.authService.IssueGuest(name)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GuestToken{DisplayName: name, Token: token})
}

// Online handles GET /api/v1/presence
func (h *PlayerHandler) Online(w http.ResponseWriter, r *http.Request) {
	roster := h.presence.Roster()
	players := make([]response.Player, len(roster))
	for i, identity := range roster {
		players[i] = response.PlayerFromModel(identity)
	}
	response.JSON(w, http.StatusOK, response.Roster{Count: len(players), Players: players})
}

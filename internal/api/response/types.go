package response

import (
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Health is the health check body
type Health struct {
	Status      string `json:"status"`
	Flags       int    `json:"flags"`
	Online      int    `json:"online"`
	Connections int    `json:"connections"`
	Duels       int    `json:"duels"`
}

// Flag represents a catalog entry in API responses. Hints are only
// included when a single flag is requested.
type Flag struct {
	Code      string           `json:"code"`
	ImagePath string           `json:"image_path"`
	Hints     *model.FlagHints `json:"hints,omitempty"`
}

// FlagFromModel converts a model.FlagRecord
func FlagFromModel(r model.FlagRecord, withHints bool) Flag {
	f := Flag{
		Code:      string(r.Code),
		ImagePath: r.Image,
	}
	if withHints {
		hints := r.Hints
		f.Hints = &hints
	}
	return f
}

// FlagList is the response for the catalog listing
type FlagList struct {
	Count int    `json:"count"`
	Flags []Flag `json:"flags"`
}

// Player represents an online player in API responses
type Player struct {
	ConnectionID string `json:"connection_id"`
	DisplayName  string `json:"display_name"`
	IsGuest      bool   `json:"is_guest"`
	Wins         int    `json:"wins"`
}

// PlayerFromModel converts a model.Identity, exposing only its public profile
func PlayerFromModel(i model.Identity) Player {
	p := i.Profile()
	return Player{
		ConnectionID: string(p.ConnectionID),
		DisplayName:  p.DisplayName,
		IsGuest:      p.IsGuest,
		Wins:         p.Wins,
	}
}

// Roster is the response for the presence listing
type Roster struct {
	Count   int      `json:"count"`
	Players []Player `json:"players"`
}

// GuestToken is the response for minting a guest token
type GuestToken struct {
	DisplayName string `json:"display_name"`
	Token       string `json:"token"`
}

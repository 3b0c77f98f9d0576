package model

import "time"

// SessionID uniquely identifies a duel session
type SessionID string

// ParticipantID identifies a player within a duel. It is the player's
// connection id when the duel was created and survives reconnects.
type ParticipantID string

// Duel shape constants
const (
	RoundsPerDuel       = 5
	MaxHintsPerRound    = 3
	ParticipantsPerDuel = 2
)

// Participant is one of the two players of a duel
type Participant struct {
	ID          ParticipantID
	AccountID   AccountID
	DisplayName string
	IsGuest     bool
}

// ParticipantFromIdentity snapshots an identity at duel creation
func ParticipantFromIdentity(identity Identity) Participant {
	return Participant{
		ID:          ParticipantID(identity.ConnectionID),
		AccountID:   identity.AccountID,
		DisplayName: identity.DisplayName,
		IsGuest:     identity.IsGuest,
	}
}

// HintUsage tracks the hints a participant revealed in their current round
type HintUsage struct {
	Round    int
	Revealed []string
}

// SessionStart is the durable record written when a duel starts
type SessionStart struct {
	SessionID    SessionID     `json:"sessionId"`
	Flags        []FlagCode    `json:"flags"`
	StartedAt    time.Time     `json:"startedAt"`
	Participants []Participant `json:"participants"`
}

// ParticipantResult is one participant's final standing
type ParticipantResult struct {
	ParticipantID   ParticipantID `json:"participantId"`
	AccountID       AccountID     `json:"accountId,omitempty"`
	DisplayName     string        `json:"name"`
	IsGuest         bool          `json:"guest"`
	Score           int           `json:"score"`
	SubmittedRounds []int         `json:"submittedRounds"`
}

// SessionResult is the durable record written when a duel completes
type SessionResult struct {
	SessionID         SessionID           `json:"sessionId"`
	Flags             []FlagCode          `json:"flags"`
	StartedAt         time.Time           `json:"startedAt"`
	CompletedAt       time.Time           `json:"completedAt"`
	Participants      []ParticipantResult `json:"participants"`
	WinnerID          ParticipantID       `json:"winnerId,omitempty"` // Empty if tie
	GameOverDelivered bool                `json:"gameOverDelivered"`
}

// WinnerAccount returns the account id of a registered winner, or empty
func (r *SessionResult) WinnerAccount() AccountID {
	if r.WinnerID == "" {
		return ""
	}
	for _, p := range r.Participants {
		if p.ParticipantID == r.WinnerID && !p.IsGuest {
			return p.AccountID
		}
	}
	return ""
}

package model

import "time"

// EventType identifies the type of a wire event
type EventType string

const (
	// Inbound events
	EventRegister     EventType = "register"
	EventInvite       EventType = "invite"
	EventAcceptInvite EventType = "accept-invite"
	EventJoinSession  EventType = "join-session"
	EventRequestHint  EventType = "request-hint"
	EventSubmitGuess  EventType = "submit-guess"

	// Outbound events
	EventConnected        EventType = "connected"
	EventOnlineUsers      EventType = "online-users"
	EventInviteReceived   EventType = "invite-received"
	EventStartDuel        EventType = "start-duel"
	EventDuelCreateFailed EventType = "duel-create-failed"
	EventTimer            EventType = "timer"
	EventHintSelected     EventType = "hint-selected"
	EventHintError        EventType = "hint-error"
	EventRehydrateState   EventType = "rehydrate-state"
	EventScoreUpdate      EventType = "score-update"
	EventGuessError       EventType = "guess-error"
	EventGameOver         EventType = "game-over"
	EventError            EventType = "error"
)

// Event is an outbound message addressed to one or more connections
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   any // Type-specific data
}

// NewEvent creates an event stamped with the given time
func NewEvent(eventType EventType, at time.Time, payload any) Event {
	return Event{Type: eventType, Timestamp: at, Payload: payload}
}

// Inbound payloads

// RegisterPayload is sent by a client to join the presence roster
type RegisterPayload struct {
	Token    string    `json:"token,omitempty"`
	UserID   AccountID `json:"userId,omitempty"`
	Username string    `json:"username"`
	Guest    bool      `json:"guest"`
}

// InvitePayload asks the server to invite another connection
type InvitePayload struct {
	TargetID ConnectionID `json:"targetId"`
}

// AcceptInvitePayload accepts an invite from the given inviter
type AcceptInvitePayload struct {
	InviterID ConnectionID `json:"inviterId"`
}

// JoinSessionPayload re-attaches a connection to a running duel
type JoinSessionPayload struct {
	SessionID     SessionID     `json:"sessionId"`
	ParticipantID ParticipantID `json:"participantId"`
}

// RequestHintPayload asks for a hint for the given round
type RequestHintPayload struct {
	SessionID SessionID `json:"sessionId"`
	Round     int       `json:"round"`
}

// SubmitGuessPayload reports a guess for the given round
type SubmitGuessPayload struct {
	SessionID SessionID `json:"sessionId"`
	Round     int       `json:"round"`
	Guess     string    `json:"guess"`
	HintsUsed int       `json:"hintsUsed"`
	TimeLeft  float64   `json:"timeLeft"`
}

// Outbound payloads

// ConnectedPayload tells a client its connection id
type ConnectedPayload struct {
	ConnectionID ConnectionID `json:"connectionId"`
}

// StartDuelPayload announces a new duel to one participant
type StartDuelPayload struct {
	SessionID     SessionID     `json:"sessionId"`
	ParticipantID ParticipantID `json:"participantId"`
	Opponent      string        `json:"opponent"`
	Rounds        int           `json:"rounds"`
	RoundDuration int           `json:"roundDuration"`
}

// TimerPayload is the authoritative clock broadcast
type TimerPayload struct {
	Round    int `json:"round"`
	TimeLeft int `json:"timeLeft"`
}

// HintSelectedPayload carries a revealed hint
type HintSelectedPayload struct {
	Hint          string `json:"hint"`
	RevealedCount int    `json:"revealedCount"`
}

// ErrorPayload carries a reason for a failed request
type ErrorPayload struct {
	Reason string `json:"reason"`
}

// RehydratePayload restores a reconnecting participant's view
type RehydratePayload struct {
	TotalScore             int      `json:"totalScore"`
	SubmittedRounds        []int    `json:"submittedRounds"`
	RevealedHintsThisRound []string `json:"revealedHintsThisRound"`
}

// ScoreUpdatePayload carries the participant's running total
type ScoreUpdatePayload struct {
	TotalScore int `json:"totalScore"`
}

// PlayerScore is a name and score pair in the game over summary
type PlayerScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameOverPayload is the personalised final result
type GameOverPayload struct {
	You      PlayerScore `json:"you"`
	Opponent PlayerScore `json:"opponent"`
}

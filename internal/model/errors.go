package model

import "errors"

// Common errors used across the application
var (
	// Presence errors
	ErrConnectionNotFound = errors.New("connection not found")

	// Invitation errors
	ErrInvalidParticipants = errors.New("a duel needs two distinct participants")
	ErrNoPendingInvite     = errors.New("no pending invite from that player")

	// Duel errors
	ErrSessionNotFound       = errors.New("session not found")
	ErrNotParticipant        = errors.New("not a participant of this session")
	ErrDuelCreateFailed      = errors.New("duel could not be created")
	ErrInvalidRound          = errors.New("invalid round")
	ErrHintsExhausted        = errors.New("no hints left")
	ErrRoundAlreadySubmitted = errors.New("round already submitted")
	ErrAlreadyInDuel         = errors.New("connection is already in a duel")

	// Catalog errors
	ErrFlagNotFound    = errors.New("flag not found")
	ErrCatalogTooSmall = errors.New("catalog has too few flags for a duel")

	// Auth errors
	ErrInvalidToken = errors.New("invalid or expired token")
)

package redis

import (
	"fmt"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Key prefix for all duel-related data
const keyPrefix = "flagduel"

// sessionStartKey returns the Redis key for a session start record
func sessionStartKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s:start", keyPrefix, id)
}

// sessionResultKey returns the Redis key for a session result record
func sessionResultKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s:result", keyPrefix, id)
}

// winsKey returns the Redis key for an account's duel victory counter
func winsKey(accountID model.AccountID) string {
	return fmt.Sprintf("%s:wins:%s", keyPrefix, accountID)
}

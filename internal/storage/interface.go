package storage

import (
	"context"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
)

// Store is the durable side of a duel: a start record, a terminal result
// and the win counts shown in the roster. Live duel state never goes here.
type Store interface {
	RecordSessionStart(ctx context.Context, start model.SessionStart) error
	RecordSessionResult(ctx context.Context, result model.SessionResult) error
	GetWinCount(ctx context.Context, accountID model.AccountID) (int, error)
}

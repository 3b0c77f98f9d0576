package memory

import (
	"context"
	"sync"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	starts  map[model.SessionID]model.SessionStart
	results map[model.SessionID]model.SessionResult
	wins    map[model.AccountID]int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		starts:  make(map[model.SessionID]model.SessionStart),
		results: make(map[model.SessionID]model.SessionResult),
		wins:    make(map[model.AccountID]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Session operations

func (s *Storage) RecordSessionStart(ctx context.Context, start model.SessionStart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts[start.SessionID] = start
	return nil
}

func (s *Storage) RecordSessionResult(ctx context.Context, result model.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.starts[result.SessionID]; !ok {
		return model.ErrSessionNotFound
	}
	s.results[result.SessionID] = result
	if winner := result.WinnerAccount(); winner != "" {
		s.wins[winner]++
	}
	return nil
}

// GetSessionStart returns the start record for a session
func (s *Storage) GetSessionStart(ctx context.Context, id model.SessionID) (*model.SessionStart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start, ok := s.starts[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return &start, nil
}

// GetSessionResult returns the result record for a completed session
func (s *Storage) GetSessionResult(ctx context.Context, id model.SessionID) (*model.SessionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[id]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	return &result, nil
}

// Win count operations

func (s *Storage) GetWinCount(ctx context.Context, accountID model.AccountID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wins[accountID], nil
}

// SetWinCount seeds a win count (accounts live outside this service)
func (s *Storage) SetWinCount(ctx context.Context, accountID model.AccountID, wins int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wins[accountID] = wins
	return nil
}

package mocks

import (
	"context"
	"sync"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage"
)

// MockStore is an in-memory Store with injectable failures
type MockStore struct {
	mu sync.Mutex

	Starts  []model.SessionStart
	Results []model.SessionResult
	Wins    map[model.AccountID]int

	// Errors returned by the corresponding operations when set
	StartErr  error
	ResultErr error
	WinsErr   error
}

// Ensure MockStore implements Store
var _ storage.Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore
func NewMockStore() *MockStore {
	return &MockStore{Wins: make(map[model.AccountID]int)}
}

// RecordSessionStart records the start or returns StartErr
func (s *MockStore) RecordSessionStart(_ context.Context, start model.SessionStart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StartErr != nil {
		return s.StartErr
	}
	s.Starts = append(s.Starts, start)
	return nil
}

// RecordSessionResult records the result or returns ResultErr
func (s *MockStore) RecordSessionResult(_ context.Context, result model.SessionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ResultErr != nil {
		return s.ResultErr
	}
	s.Results = append(s.Results, result)
	return nil
}

// GetWinCount returns the configured win count or WinsErr
func (s *MockStore) GetWinCount(_ context.Context, accountID model.AccountID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WinsErr != nil {
		return 0, s.WinsErr
	}
	return s.Wins[accountID], nil
}

// SetStartErr sets StartErr under the lock
func (s *MockStore) SetStartErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.StartErr = err
}

// SetResultErr sets ResultErr under the lock
func (s *MockStore) SetResultErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ResultErr = err
}

// StartCount returns how many start records were written
func (s *MockStore) StartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Starts)
}

// ResultCount returns how many results were written
func (s *MockStore) ResultCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Results)
}

// LastResult returns the most recent result, if any
func (s *MockStore) LastResult() (model.SessionResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Results) == 0 {
		return model.SessionResult{}, false
	}
	return s.Results[len(s.Results)-1], true
}

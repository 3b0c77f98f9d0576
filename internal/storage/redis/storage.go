package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Session operations

func (s *Storage) RecordSessionStart(ctx context.Context, start model.SessionStart) error {
	data, err := json.Marshal(start)
	if err != nil {
		return err
	}

	return s.client.Set(ctx, sessionStartKey(start.SessionID), data, s.cfg.SessionTTL).Err()
}

func (s *Storage) RecordSessionResult(ctx context.Context, result model.SessionResult) error {
	exists, err := s.client.Exists(ctx, sessionStartKey(result.SessionID)).Result()
	if err != nil {
		return err
	}
	if exists == 0 {
		return model.ErrSessionNotFound
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	// Use pipeline so the result and the winner's counter land together
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionResultKey(result.SessionID), data, s.cfg.SessionTTL)
	if winner := result.WinnerAccount(); winner != "" {
		pipe.Incr(ctx, winsKey(winner))
	}
	_, err = pipe.Exec(ctx)
	return err
}

// GetSessionStart returns the start record for a session
func (s *Storage) GetSessionStart(ctx context.Context, id model.SessionID) (*model.SessionStart, error) {
	data, err := s.client.Get(ctx, sessionStartKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var start model.SessionStart
	if err := json.Unmarshal(data, &start); err != nil {
		return nil, err
	}
	return &start, nil
}

// GetSessionResult returns the result record for a completed session
func (s *Storage) GetSessionResult(ctx context.Context, id model.SessionID) (*model.SessionResult, error) {
	data, err := s.client.Get(ctx, sessionResultKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var result model.SessionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Win count operations

func (s *Storage) GetWinCount(ctx context.Context, accountID model.AccountID) (int, error) {
	wins, err := s.client.Get(ctx, winsKey(accountID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return wins, nil
}

// SetWinCount seeds a win count (accounts live outside this service)
func (s *Storage) SetWinCount(ctx context.Context, accountID model.AccountID, wins int) error {
	return s.client.Set(ctx, winsKey(accountID), wins, 0).Err()
}

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/model"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage"
)

// schema adds what the duel server needs to the shared sessions/users tables.
// The users table itself belongs to the account service.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id         UUID PRIMARY KEY,
		flag_code  TEXT,
		flag_codes JSONB,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`ALTER TABLE sessions ADD COLUMN IF NOT EXISTS ended_at TIMESTAMPTZ`,
	`ALTER TABLE sessions ADD COLUMN IF NOT EXISTS result JSONB`,
}

// DB is the subset of *pgxpool.Pool the store uses
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	db   DB
	pool *pgxpool.Pool
}

// New connects a pool and verifies the connection
func New(ctx context.Context, cfg Config) (*Storage, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Storage{db: pool, pool: pool}, nil
}

// NewWithDB creates a store over an existing connection (for testing)
func NewWithDB(db DB) *Storage {
	return &Storage{db: db}
}

// Close releases the pool if this store owns one
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// EnsureSchema creates or extends the tables the store writes to
func (s *Storage) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

// Session operations

func (s *Storage) RecordSessionStart(ctx context.Context, start model.SessionStart) error {
	codes, err := json.Marshal(start.Flags)
	if err != nil {
		return err
	}

	var first string
	if len(start.Flags) > 0 {
		first = string(start.Flags[0])
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO sessions (id, flag_code, flag_codes, started_at) VALUES ($1, $2, $3, $4)`,
		string(start.SessionID), first, codes, start.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session start: %w", err)
	}
	return nil
}

func (s *Storage) RecordSessionResult(ctx context.Context, result model.SessionResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE sessions SET ended_at = $2, result = $3 WHERE id = $1`,
			string(result.SessionID), result.CompletedAt, data,
		)
		if err != nil {
			return fmt.Errorf("update session result: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrSessionNotFound
		}

		if winner := result.WinnerAccount(); winner != "" {
			if _, err := tx.Exec(ctx,
				`UPDATE users SET duelvictories = duelvictories + 1 WHERE id = $1`,
				string(winner),
			); err != nil {
				return fmt.Errorf("increment duel victories: %w", err)
			}
		}
		return nil
	})
}

// Win count operations

func (s *Storage) GetWinCount(ctx context.Context, accountID model.AccountID) (int, error) {
	var wins int
	err := s.db.QueryRow(ctx,
		`SELECT COALESCE(duelvictories, 0) FROM users WHERE id = $1`,
		string(accountID),
	).Scan(&wins)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select duel victories: %w", err)
	}
	return wins, nil
}

package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/clock"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/dependencies/random"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/gateway"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/auth"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/catalog"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/duel"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/hint"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/invite"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/presence"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/scoring"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage/memory"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage/postgres"
	redisstorage "github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage/redis"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeRedis    = "redis"
	StorageTypePostgres = "postgres"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Store

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Catalog         *catalog.Service
	ScoringService  *scoring.Service
	HintService     *hint.Service
	AuthService     *auth.Service
	Presence        *presence.Controller
	InviteBroker    *invite.Controller
	DuelManager     *duel.Manager
	Hub             *ws.Hub
	Dispatcher      *gateway.Dispatcher
	WebsocketServer *ws.Handler

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// CatalogPath is a YAML or JSON catalog file (optional)
	CatalogPath string
	// FlagsDir is a directory of flag images; when set it takes precedence
	// over CatalogPath and hints are read from HintsPath
	FlagsDir  string
	HintsPath string
	// DuelConfig holds round timing. Zero fields use duel.DefaultConfig().
	DuelConfig duel.Config
	// AuthConfig holds token verification settings. An empty secret
	// trusts client-supplied identities.
	AuthConfig auth.Config
	// WSConfig holds websocket settings. Zero fields use ws.DefaultConfig().
	WSConfig ws.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// PostgresConfig holds Postgres settings (required if StorageType is "postgres")
	PostgresConfig *postgres.Config
}

// New creates a new application with all dependencies wired. The hub is not
// running until Start is called.
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	flags, err := loadCatalog(cfg)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	app := newWithDependencies(store, flags, clock.New(), random.New(), cfg, logger)
	logger.Info("application wired",
		slog.String("storage", storageName(cfg.StorageType)),
		slog.Int("flags", flags.Count()),
		slog.Bool("token_verification", app.AuthService.Enabled()),
	)
	return app, nil
}

func newStore(ctx context.Context, cfg Config) (storage.Store, error) {
	switch storageName(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		store, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		return store, nil
	case StorageTypePostgres:
		if cfg.PostgresConfig == nil {
			return nil, errors.New("PostgresConfig required when StorageType is postgres")
		}
		store, err := postgres.New(ctx, *cfg.PostgresConfig)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'postgres'")
	}
}

func storageName(storageType string) string {
	if storageType == "" {
		return StorageTypeMemory
	}
	return storageType
}

func loadCatalog(cfg Config) (*catalog.Service, error) {
	flags := catalog.New()
	switch {
	case cfg.FlagsDir != "":
		if err := flags.LoadDir(cfg.FlagsDir, cfg.HintsPath); err != nil {
			return nil, fmt.Errorf("load flags dir: %w", err)
		}
	case cfg.CatalogPath != "":
		if err := flags.LoadFile(cfg.CatalogPath); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
	}
	return flags, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Store,
	flags *catalog.Service,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *App {
	duelCfg := cfg.DuelConfig
	if duelCfg.RoundDuration <= 0 {
		duelCfg.RoundDuration = duel.DefaultConfig().RoundDuration
	}
	scoringCfg := scoring.DefaultConfig()
	scoringCfg.RoundDuration = duelCfg.RoundDuration

	authCfg := cfg.AuthConfig
	if authCfg.Leeway == 0 {
		authCfg.Leeway = auth.DefaultConfig().Leeway
	}

	// Create services
	scoringService := scoring.New(scoringCfg)
	hintService := hint.New(rnd)
	authService := auth.New(clk, rnd, authCfg)
	hub := ws.NewHub(logger)
	presenceController := presence.NewController(store, hub, clk, logger.With(slog.String("component", "presence")))
	duelManager := duel.NewManager(duelCfg, flags, scoringService, hintService, store, hub, clk, rnd,
		logger.With(slog.String("component", "duel")))
	inviteBroker := invite.NewController(presenceController, duelManager, hub, clk,
		logger.With(slog.String("component", "invite")))
	dispatcher := gateway.NewDispatcher(authService, presenceController, inviteBroker, duelManager, hub, clk, logger)
	wsHandler := ws.NewHandler(hub, dispatcher, cfg.WSConfig, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Catalog:         flags,
		ScoringService:  scoringService,
		HintService:     hintService,
		AuthService:     authService,
		Presence:        presenceController,
		InviteBroker:    inviteBroker,
		DuelManager:     duelManager,
		Hub:             hub,
		Dispatcher:      dispatcher,
		WebsocketServer: wsHandler,
		logger:          logger,
	}
}

// Start runs the websocket hub
func (a *App) Start() {
	go a.Hub.Run()
}

// Close stops every live duel, waits for pending result writes, then
// disconnects clients and closes storage
func (a *App) Close() error {
	err := a.DuelManager.Close()
	a.Hub.Close()
	closeStore(a.Storage)
	if err != nil {
		a.logger.Error("duel manager close failed", slog.String("error", err.Error()))
	}
	return err
}

func closeStore(store storage.Store) {
	if closer, ok := store.(io.Closer); ok {
		_ = closer.Close()
	}
}

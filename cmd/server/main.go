package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/api"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/config"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/factory"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/auth"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/services/duel"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage/postgres"
	redisstorage "github.com/OrangeCatLoves/guess-the-flag-backend/internal/storage/redis"
	"github.com/OrangeCatLoves/guess-the-flag-backend/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging with JSON output
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	factoryCfg := factory.Config{
		CatalogPath: cfg.CatalogPath,
		FlagsDir:    cfg.FlagsDir,
		HintsPath:   cfg.HintsPath,
		DuelConfig: duel.Config{
			RoundDuration: cfg.RoundDuration,
			Grace:         cfg.RoundGrace,
			TickInterval:  cfg.TickInterval,
		},
		AuthConfig: auth.Config{
			Secret: cfg.JWTSecret,
		},
		WSConfig: ws.Config{
			AllowedOrigins: cfg.AllowedOrigins,
		},
		Logger:      logger,
		StorageType: cfg.StorageType,
	}

	switch cfg.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	case factory.StorageTypePostgres:
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.DatabaseURL
		factoryCfg.PostgresConfig = &pgCfg
	}

	// Create application factory
	app, err := factory.New(context.Background(), factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if app.Catalog.Count() < 5 {
		logger.Warn("flag catalog too small for duels", slog.Int("flags", app.Catalog.Count()))
	}
	app.Start()

	router := api.NewRouter(api.RouterConfig{
		Logger:         logger,
		AuthService:    app.AuthService,
		Catalog:        app.Catalog,
		Presence:       app.Presence,
		DuelManager:    app.DuelManager,
		Hub:            app.Hub,
		WSHandler:      app.WebsocketServer,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	// Create server
	serverConfig := api.ServerConfig{
		Host:            cfg.Host,
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}
	server := api.NewServer(router, serverConfig, logger)

	// Serve until SIGINT/SIGTERM, then shut down gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	exitCode := 0
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		exitCode = 1
	}

	// Live duels are cancelled and in-flight result writes drained before
	// websocket clients are disconnected
	if err := app.Close(); err != nil {
		exitCode = 1
	}

	logger.Info("server stopped")
	stop()
	os.Exit(exitCode)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/auth"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/backendapi"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/cache"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/logger"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/observability"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/stream"
	"github.com/Srinath10X/foundersTribe-sub002/internal/interfaces/httpserver"
)

// Application holds the main application components.
type Application struct {
	httpServer *httpserver.HTTPServer
	manager    *chat.Manager
	log        zerolog.Logger
}

// NewApplication creates a new application instance.
func NewApplication(httpServer *httpserver.HTTPServer, manager *chat.Manager, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		manager:    manager,
		log:        log,
	}
}

// Start runs the application.
func (a *Application) Start(ctx context.Context) error {
	a.manager.Start(ctx)

	err := a.httpServer.Run(ctx)

	a.manager.Stop()
	return err
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown telemetry")
		}
	}()

	authValidator, err := auth.NewValidator(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize auth validator")
	}

	identity := backendapi.NewIdentityClient(cfg, log)
	backend := backendapi.NewClient(cfg, identity, log)
	directory := backendapi.NewDirectoryClient(cfg, log)
	streamClient := stream.NewClient(cfg, log)

	messageCache, err := newMessageCache(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize message cache")
	}

	resolver := chat.NewResolver(backend, directory, directory, log)

	manager := chat.NewManager(chat.ManagerConfig{
		HistoryPageSize:  cfg.HistoryPageSize,
		ReadSyncInterval: cfg.ReadSyncInterval,
		IdleTTL:          cfg.SessionIdleTTL,
		SweepInterval:    cfg.SessionSweepInterval,
	}, backend, streamClient, messageCache, identity, resolver, log)

	httpServer := httpserver.New(cfg, log, manager, authValidator)

	app := NewApplication(httpServer, manager, log)

	log.Info().
		Str("service", cfg.ServiceName).
		Int("port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Msg("starting application")

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

// newMessageCache selects the Redis cache when REDIS_URL is set, otherwise the
// in-memory cache.
func newMessageCache(cfg *config.Config, log zerolog.Logger) (chat.Cache, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cfg.CacheTTL, log), nil
	}
	return cache.NewRedis(cfg.RedisURL, cfg.CacheTTL, log)
}

func loadEnvFiles() {
	paths := []string{".env", "../.env", "../../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}

//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/auth"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/backendapi"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/cache"
	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/stream"
	"github.com/Srinath10X/foundersTribe-sub002/internal/interfaces/httpserver"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	ProvideIdentity,
	ProvideBackend,
	ProvideDirectoryClient,
	ProvideStream,
	ProvideMessageCache,
	ProvideAuthValidator,

	// Domain providers
	ProvideResolver,
	ProvideManager,

	// Interface providers
	httpserver.New,

	// Application
	NewApplication,
)

// ProvideIdentity provides the identity adapter.
func ProvideIdentity(cfg *config.Config, log zerolog.Logger) chat.Identity {
	return backendapi.NewIdentityClient(cfg, log)
}

// ProvideBackend provides the conversation backend client.
func ProvideBackend(cfg *config.Config, identity chat.Identity, log zerolog.Logger) chat.Backend {
	return backendapi.NewClient(cfg, identity, log)
}

// ProvideDirectoryClient provides the profile directory client.
func ProvideDirectoryClient(cfg *config.Config, log zerolog.Logger) *backendapi.DirectoryClient {
	return backendapi.NewDirectoryClient(cfg, log)
}

// ProvideStream provides the realtime stream client.
func ProvideStream(cfg *config.Config, log zerolog.Logger) chat.Stream {
	return stream.NewClient(cfg, log)
}

// ProvideMessageCache selects the cache implementation from config.
func ProvideMessageCache(cfg *config.Config, log zerolog.Logger) (chat.Cache, error) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cfg.CacheTTL, log), nil
	}
	return cache.NewRedis(cfg.RedisURL, cfg.CacheTTL, log)
}

// ProvideAuthValidator provides the bearer auth validator.
func ProvideAuthValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*auth.Validator, error) {
	return auth.NewValidator(ctx, cfg, log)
}

// ProvideResolver provides the conversation resolver.
func ProvideResolver(backend chat.Backend, directory *backendapi.DirectoryClient, log zerolog.Logger) *chat.Resolver {
	return chat.NewResolver(backend, directory, directory, log)
}

// ProvideManager provides the session manager.
func ProvideManager(
	cfg *config.Config,
	backend chat.Backend,
	streamClient chat.Stream,
	messageCache chat.Cache,
	identity chat.Identity,
	resolver *chat.Resolver,
	log zerolog.Logger,
) *chat.Manager {
	return chat.NewManager(chat.ManagerConfig{
		HistoryPageSize:  cfg.HistoryPageSize,
		ReadSyncInterval: cfg.ReadSyncInterval,
		IdleTTL:          cfg.SessionIdleTTL,
		SweepInterval:    cfg.SessionSweepInterval,
	}, backend, streamClient, messageCache, identity, resolver, log)
}

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, error) {
	wire.Build(ProviderSet)
	return nil, nil
}

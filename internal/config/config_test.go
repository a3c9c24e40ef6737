package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:8080")
	t.Setenv("STREAM_URL", "ws://localhost:8080/realtime")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chat-sync", cfg.ServiceName)
	assert.Equal(t, 8187, cfg.HTTPPort)
	assert.Equal(t, ":8187", cfg.Addr())
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 8*time.Second, cfg.ReadSyncInterval)
	assert.Equal(t, 50, cfg.HistoryPageSize)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.False(t, cfg.AuthEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://backend:9000")
	t.Setenv("STREAM_URL", "ws://backend:9000/realtime")
	t.Setenv("CHAT_SYNC_PORT", "9090")
	t.Setenv("READ_SYNC_INTERVAL", "3s")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 3*time.Second, cfg.ReadSyncInterval)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}

func TestLoadRequiredURLs(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "")
	t.Setenv("STREAM_URL", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BACKEND_BASE_URL")

	t.Setenv("BACKEND_BASE_URL", "http://localhost:8080")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STREAM_URL")
}

func TestLoadAuthValidation(t *testing.T) {
	t.Setenv("BACKEND_BASE_URL", "http://localhost:8080")
	t.Setenv("STREAM_URL", "ws://localhost:8080/realtime")
	t.Setenv("AUTH_ENABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ISSUER")

	t.Setenv("ISSUER", "https://auth.example.com")
	t.Setenv("AUDIENCE", "chat-sync")
	t.Setenv("JWKS_URL", "https://auth.example.com/.well-known/jwks.json")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AuthEnabled)
}

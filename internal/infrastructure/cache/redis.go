package cache

import (
	"context"
	"encoding/json"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

// Redis is a message cache backed by Redis with native TTL expiry. Snapshots
// are stored as JSON; any read or decode failure degrades to a cache miss, the
// engine then falls back to the network fetch.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedis constructs a Redis-backed message cache from a redis URL.
func NewRedis(url string, ttl time.Duration, log zerolog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &Redis{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "message-cache-redis").Logger(),
	}, nil
}

var _ chat.Cache = (*Redis)(nil)

func (c *Redis) Get(ctx context.Context, viewerID, conversationID string) []*chat.Message {
	raw, err := c.client.Get(ctx, redisKey(viewerID, conversationID)).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.log.Debug().Err(err).Msg("cache read failed")
		return nil
	}

	var items []*chat.Message
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Debug().Err(err).Msg("cache entry corrupt, treating as cold")
		return nil
	}
	return items
}

func (c *Redis) Set(ctx context.Context, viewerID, conversationID string, items []*chat.Message) {
	raw, err := json.Marshal(items)
	if err != nil {
		c.log.Debug().Err(err).Msg("cache encode failed")
		return
	}
	if err := c.client.Set(ctx, redisKey(viewerID, conversationID), raw, c.ttl).Err(); err != nil {
		c.log.Debug().Err(err).Msg("cache write failed")
	}
}

// Close releases the underlying client.
func (c *Redis) Close() error {
	return c.client.Close()
}

func redisKey(viewerID, conversationID string) string {
	return "chat:messages:" + cacheKey(viewerID, conversationID)
}

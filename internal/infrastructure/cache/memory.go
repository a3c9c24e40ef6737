// Package cache provides message cache adapters behind the chat.Cache port.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

func cacheKey(viewerID, conversationID string) string {
	if viewerID == "" {
		viewerID = "anonymous"
	}
	return viewerID + "::" + conversationID
}

type memoryEntry struct {
	items    []*chat.Message
	cachedAt time.Time
}

// Memory is a mutex-based in-memory message cache with lazy TTL eviction.
// Expired entries are treated as absent and removed on read; there is no
// eviction goroutine.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewMemory creates an in-memory message cache.
func NewMemory(ttl time.Duration, log zerolog.Logger) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		log:     log.With().Str("component", "message-cache").Logger(),
	}
}

var _ chat.Cache = (*Memory)(nil)

// Get returns the cached sequence, or nil when cold or expired.
func (c *Memory) Get(_ context.Context, viewerID, conversationID string) []*chat.Message {
	key := cacheKey(viewerID, conversationID)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.cachedAt) > c.ttl {
		delete(c.entries, key)
		return nil
	}

	out := make([]*chat.Message, len(entry.items))
	copy(out, entry.items)
	return out
}

// Set replaces the cached sequence for the pair.
func (c *Memory) Set(_ context.Context, viewerID, conversationID string, items []*chat.Message) {
	key := cacheKey(viewerID, conversationID)

	stored := make([]*chat.Message, len(items))
	copy(stored, items)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{items: stored, cachedAt: c.now()}
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

func testMessages(n int) []*chat.Message {
	out := make([]*chat.Message, n)
	for i := range out {
		out[i] = &chat.Message{
			ID:             string(rune('a' + i)),
			ConversationID: "conv-1",
			SenderID:       "u1",
			Type:           chat.TypeText,
			Body:           "body",
			CreatedAt:      time.Now(),
		}
	}
	return out
}

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory(5*time.Minute, zerolog.Nop())
	ctx := context.Background()

	assert.Nil(t, c.Get(ctx, "u1", "conv-1"))

	items := testMessages(2)
	c.Set(ctx, "u1", "conv-1", items)

	got := c.Get(ctx, "u1", "conv-1")
	require.Len(t, got, 2)
	assert.Equal(t, items[0].ID, got[0].ID)

	// Entries are scoped per viewer: a different viewer stays cold.
	assert.Nil(t, c.Get(ctx, "u2", "conv-1"))
}

func TestMemoryTTLExpiry(t *testing.T) {
	c := NewMemory(5*time.Minute, zerolog.Nop())
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set(ctx, "u1", "conv-1", testMessages(1))

	now = now.Add(5 * time.Minute)
	require.NotNil(t, c.Get(ctx, "u1", "conv-1"))

	now = now.Add(time.Millisecond)
	assert.Nil(t, c.Get(ctx, "u1", "conv-1"))

	// Expired entries are evicted on read, not resurrected later.
	now = now.Add(-time.Minute)
	assert.Nil(t, c.Get(ctx, "u1", "conv-1"))
}

func TestMemoryAnonymousKey(t *testing.T) {
	c := NewMemory(5*time.Minute, zerolog.Nop())
	ctx := context.Background()

	c.Set(ctx, "", "conv-1", testMessages(1))
	assert.NotNil(t, c.Get(ctx, "anonymous", "conv-1"))
	assert.NotNil(t, c.Get(ctx, "", "conv-1"))
}

func TestMemoryReturnsCopy(t *testing.T) {
	c := NewMemory(5*time.Minute, zerolog.Nop())
	ctx := context.Background()

	c.Set(ctx, "u1", "conv-1", testMessages(2))

	first := c.Get(ctx, "u1", "conv-1")
	first[0] = nil

	second := c.Get(ctx, "u1", "conv-1")
	require.NotNil(t, second[0])
}

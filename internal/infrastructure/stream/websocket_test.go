package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

func newTestStream(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		StreamURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/realtime",
	}
	return NewClient(cfg, zerolog.Nop())
}

func nextEvent(t *testing.T, sub chat.Subscription) chat.StreamEvent {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "event channel closed early")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream event")
		return chat.StreamEvent{}
	}
}

func TestSubscribeReceivesFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var gotConversation string

	client := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		gotConversation = r.URL.Query().Get("conversation_id")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(frame{Type: "insert", Message: &chat.Message{
			ID:             "srv-1",
			ConversationID: "conv-1",
			SenderID:       "u2",
			Body:           "hello",
			CreatedAt:      time.Now(),
		}})
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sub, err := client.Subscribe(context.Background(), "conv-1")
	require.NoError(t, err)
	defer sub.Close()

	ev := nextEvent(t, sub)
	require.True(t, ev.StatusChanged)
	assert.True(t, ev.Connected)

	ev = nextEvent(t, sub)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "srv-1", ev.Message.ID)
	assert.Equal(t, "conv-1", gotConversation)
}

func TestSubscribeIgnoresMalformedFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	client := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
		_ = conn.WriteJSON(frame{Type: "insert", Message: &chat.Message{ID: "srv-1"}})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sub, err := client.Subscribe(context.Background(), "conv-1")
	require.NoError(t, err)
	defer sub.Close()

	ev := nextEvent(t, sub) // connected status
	require.True(t, ev.StatusChanged)

	ev = nextEvent(t, sub)
	require.NotNil(t, ev.Message)
	assert.Equal(t, "srv-1", ev.Message.ID)
}

func TestSubscribeEmitsDisconnectOnDrop(t *testing.T) {
	upgrader := websocket.Upgrader{}
	client := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// Drop the connection immediately after the handshake.
		conn.Close()
	})

	sub, err := client.Subscribe(context.Background(), "conv-1")
	require.NoError(t, err)
	defer sub.Close()

	ev := nextEvent(t, sub)
	require.True(t, ev.StatusChanged)
	assert.True(t, ev.Connected)

	ev = nextEvent(t, sub)
	require.True(t, ev.StatusChanged)
	assert.False(t, ev.Connected)
}

func TestSubscriptionCloseIdempotent(t *testing.T) {
	upgrader := websocket.Upgrader{}
	client := newTestStream(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	sub, err := client.Subscribe(context.Background(), "conv-1")
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())

	// The event channel drains and closes after teardown.
	for range sub.Events() {
	}
}

func TestSubscribeContextCancelStopsReconnect(t *testing.T) {
	// No server at all: the dialer fails and the backoff loop must exit once
	// the context is cancelled.
	cfg := &config.Config{StreamURL: "ws://127.0.0.1:1/realtime"}
	client := NewClient(cfg, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := client.Subscribe(ctx, "conv-1")
	require.NoError(t, err)

	cancel()
	select {
	case _, ok := <-waitClosed(sub.Events()):
		assert.False(t, ok)
	case <-time.After(3 * time.Second):
		t.Fatal("subscription did not stop after context cancellation")
	}
}

// waitClosed returns a channel that yields once the source channel closes,
// discarding any buffered events first.
func waitClosed(events <-chan chat.StreamEvent) <-chan chat.StreamEvent {
	out := make(chan chat.StreamEvent)
	go func() {
		defer close(out)
		for range events {
		}
	}()
	return out
}

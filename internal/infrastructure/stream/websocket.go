// Package stream implements the realtime feed over a websocket transport.
package stream

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = 30 * time.Second
	reconnectBase     = time.Second
	reconnectCeiling  = 30 * time.Second
	eventBufferLength = 64
)

// frame is one wire event from the feed.
type frame struct {
	Type      string        `json:"type"` // "insert" | "status"
	Message   *chat.Message `json:"message,omitempty"`
	Connected bool          `json:"connected,omitempty"`
}

// Client establishes realtime subscriptions. It implements chat.Stream. Each
// Subscribe call dials a fresh connection; handles are never shared or reused.
type Client struct {
	streamURL string
	dialer    *websocket.Dialer
	log       zerolog.Logger
}

// NewClient creates a stream client from service config.
func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	return &Client{
		streamURL: cfg.StreamURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		log: log.With().Str("component", "stream-client").Logger(),
	}
}

var _ chat.Stream = (*Client)(nil)

// Subscribe opens a subscription for one conversation. The connection is
// managed in background: disconnects surface as status events and trigger
// reconnection with exponential backoff until Close or context cancellation.
func (c *Client) Subscribe(ctx context.Context, conversationID string) (chat.Subscription, error) {
	u, err := url.Parse(c.streamURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("conversation_id", conversationID)
	u.RawQuery = q.Encode()

	sub := &subscription{
		endpoint: u.String(),
		dialer:   c.dialer,
		events:   make(chan chat.StreamEvent, eventBufferLength),
		done:     make(chan struct{}),
		log:      c.log.With().Str("conversation_id", conversationID).Logger(),
	}

	sub.wg.Add(1)
	go sub.run(ctx)
	return sub, nil
}

type subscription struct {
	endpoint string
	dialer   *websocket.Dialer
	events   chan chat.StreamEvent
	done     chan struct{}
	log      zerolog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ chat.Subscription = (*subscription)(nil)

func (s *subscription) Events() <-chan chat.StreamEvent { return s.events }

// Close tears the subscription down. Idempotent.
func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
	})
	return nil
}

func (s *subscription) run(ctx context.Context) {
	defer s.wg.Done()
	defer close(s.events)

	backoff := reconnectBase
	for {
		if s.stopped(ctx) {
			return
		}

		conn, _, err := s.dialer.DialContext(ctx, s.endpoint, nil)
		if err != nil {
			s.log.Debug().Err(err).Dur("backoff", backoff).Msg("dial failed")
			if !s.sleep(ctx, backoff) {
				return
			}
			if backoff *= 2; backoff > reconnectCeiling {
				backoff = reconnectCeiling
			}
			continue
		}
		backoff = reconnectBase

		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()

		s.emit(ctx, chat.StreamEvent{StatusChanged: true, Connected: true})
		s.readLoop(ctx, conn)
		s.emit(ctx, chat.StreamEvent{StatusChanged: true, Connected: false})

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		_ = conn.Close()
	}
}

// readLoop pumps frames until the connection drops or the subscription ends.
func (s *subscription) readLoop(ctx context.Context, conn *websocket.Conn) {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pingDone := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-pingDone:
				return
			case <-ticker.C:
				_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			}
		}
	}()
	defer close(pingDone)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !s.stopped(ctx) {
				s.log.Debug().Err(err).Msg("read failed, reconnecting")
			}
			return
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			s.log.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}

		switch f.Type {
		case "insert":
			if f.Message != nil {
				s.emit(ctx, chat.StreamEvent{Message: f.Message})
			}
		case "status":
			s.emit(ctx, chat.StreamEvent{StatusChanged: true, Connected: f.Connected})
		}
	}
}

func (s *subscription) emit(ctx context.Context, ev chat.StreamEvent) {
	select {
	case s.events <- ev:
	case <-s.done:
	case <-ctx.Done():
	}
}

// sleep waits for d, returning false if the subscription ended first.
func (s *subscription) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *subscription) stopped(ctx context.Context) bool {
	select {
	case <-s.done:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

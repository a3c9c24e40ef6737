package chat

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/metrics"
	"github.com/Srinath10X/foundersTribe-sub002/internal/utils/idgen"
)

// SessionConfig carries per-session knobs resolved from service config.
type SessionConfig struct {
	HistoryPageSize  int
	ReadSyncInterval time.Duration
}

// Session is the reconciliation engine for one open (viewer, conversation)
// pair. It keeps the message sequence consistent across three concurrent
// sources: optimistic sends, the history fetch, and the realtime feed.
//
// All state transitions replace the sequence wholesale with the merge engine's
// output, so snapshots handed out earlier are never mutated.
type Session struct {
	conversationID string
	viewer         *UserSession

	cfg      SessionConfig
	backend  Backend
	stream   Stream
	cache    Cache
	resolver *Resolver
	readGate *readSyncGate
	log      zerolog.Logger

	mu          sync.Mutex
	items       []*Message
	meta        *ConversationMeta
	sending     bool
	closed      bool
	loadErr     string
	lastSendErr string
	lastActive  time.Time

	connected atomic.Bool

	sub       Subscription
	cancelRun context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newSession(
	conversationID string,
	viewer *UserSession,
	cfg SessionConfig,
	backend Backend,
	stream Stream,
	cache Cache,
	resolver *Resolver,
	log zerolog.Logger,
) *Session {
	interval := rate.Every(cfg.ReadSyncInterval)
	return &Session{
		conversationID: conversationID,
		viewer:         viewer,
		cfg:            cfg,
		backend:        backend,
		stream:         stream,
		cache:          cache,
		resolver:       resolver,
		readGate:       newReadSyncGate(backend, interval, log),
		log: log.With().
			Str("component", "chat-session").
			Str("conversation_id", conversationID).
			Logger(),
		lastActive: time.Now(),
	}
}

// viewerID returns the viewer id, or the anonymous placeholder used for cache
// keying when no session is resolved.
func (s *Session) viewerID() string {
	if s.viewer == nil || s.viewer.UserID == "" {
		return "anonymous"
	}
	return s.viewer.UserID
}

// ConversationID returns the conversation this session is bound to.
func (s *Session) ConversationID() string { return s.conversationID }

// open paints from cache, loads history, resolves metadata and subscribes to
// the realtime feed. Metadata resolution runs concurrently with the history
// fetch; neither blocks the other.
func (s *Session) open(ctx context.Context) error {
	if cached := s.cache.Get(ctx, s.viewerID(), s.conversationID); cached != nil {
		s.mu.Lock()
		s.items = cached
		s.mu.Unlock()
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelRun = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.resolveMeta(runCtx)
	}()

	s.loadHistory(ctx)

	sub, err := s.stream.Subscribe(runCtx, s.conversationID)
	if err != nil {
		// History is authoritative; a dead feed degrades to fetch-only.
		s.log.Warn().Err(err).Msg("realtime subscribe failed")
		return nil
	}
	s.sub = sub
	s.wg.Add(1)
	go s.run(runCtx)
	return nil
}

func (s *Session) resolveMeta(ctx context.Context) {
	meta, err := s.resolver.Resolve(ctx, s.conversationID, s.viewerID())
	if err != nil {
		s.log.Warn().Err(err).Msg("conversation metadata resolution failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || meta.ConversationID != s.conversationID {
		// Late result for a torn-down or superseded conversation.
		return
	}
	s.meta = meta
}

func (s *Session) loadHistory(ctx context.Context) {
	start := time.Now()
	page, err := s.backend.ListMessages(ctx, s.conversationID, ListOptions{Limit: s.cfg.HistoryPageSize})
	metrics.HistoryFetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.mu.Lock()
		s.loadErr = err.Error()
		s.mu.Unlock()
		s.log.Warn().Err(err).Msg("history fetch failed")
		return
	}

	s.mu.Lock()
	s.loadErr = ""
	merged := MergeFetched(s.items, page.Items)
	s.setStateLocked(ctx, merged)
	s.mu.Unlock()

	metrics.MessagesMerged.WithLabelValues("fetched").Add(float64(len(page.Items)))
	s.readGate.sync(ctx, s.conversationID)
}

// run consumes the realtime feed until the subscription ends or the session is
// torn down.
func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()
	defer func() {
		if s.connected.Swap(false) {
			metrics.RealtimeConnected.Dec()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.sub.Events():
			if !ok {
				return
			}
			if ev.StatusChanged {
				if s.connected.Swap(ev.Connected) != ev.Connected {
					if ev.Connected {
						metrics.RealtimeConnected.Inc()
					} else {
						metrics.RealtimeConnected.Dec()
					}
				}
				continue
			}
			if ev.Message != nil && ev.Message.ConversationID == s.conversationID {
				s.handleInsert(ctx, ev.Message)
			}
		}
	}
}

// handleInsert folds one realtime-delivered row into state. Inserts from the
// counterparty imply the viewer should acknowledge them.
func (s *Session) handleInsert(ctx context.Context, msg *Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	before := len(s.items)
	known := containsID(s.items, msg.ID)
	merged := Merge(s.items, msg)
	s.setStateLocked(ctx, merged)
	s.mu.Unlock()

	metrics.MessagesMerged.WithLabelValues("realtime").Inc()
	// A redelivery of an already-stored id overwrites in place; only entries
	// actually superseded by the merge count as collapsed.
	expected := before + 1
	if known {
		expected = before
	}
	if collapsed := expected - len(merged); collapsed > 0 {
		metrics.DuplicatesCollapsed.Add(float64(collapsed))
	}

	if msg.SenderID != "" && msg.SenderID != s.viewerID() {
		s.readGate.sync(ctx, s.conversationID)
	}
}

func containsID(items []*Message, id string) bool {
	for _, m := range items {
		if m != nil && m.ID == id {
			return true
		}
	}
	return false
}

// setStateLocked replaces the sequence and mirrors it to the cache. Callers
// hold s.mu.
func (s *Session) setStateLocked(ctx context.Context, items []*Message) {
	s.items = items
	s.lastActive = time.Now()
	s.cache.Set(ctx, s.viewerID(), s.conversationID, items)
}

// Send performs one logical send: optimistic entry first, then the network
// call, then reconciliation or failure marking. A second call while one is in
// flight returns ErrSendInFlight; the latch is a guard, not a queue.
func (s *Session) Send(ctx context.Context, body string) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyBody
	}
	if s.viewer == nil || s.viewer.UserID == "" {
		return nil, ErrNoViewer
	}

	if err := s.acquireSendLatch(); err != nil {
		return nil, err
	}
	defer s.releaseSendLatch()

	return s.send(ctx, body)
}

// acquireSendLatch claims the in-flight latch. A held latch refuses the
// caller; nothing is queued behind it.
func (s *Session) acquireSendLatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.sending {
		return ErrSendInFlight
	}
	s.sending = true
	return nil
}

func (s *Session) releaseSendLatch() {
	s.mu.Lock()
	s.sending = false
	s.mu.Unlock()
}

// send runs the optimistic insert, the network call and reconciliation.
// Callers hold the send latch.
func (s *Session) send(ctx context.Context, body string) (*Message, error) {
	localID, err := idgen.LocalMessageID()
	if err != nil {
		return nil, err
	}
	clientMessageID := uuid.NewString()

	var recipientID string
	s.mu.Lock()
	if s.meta != nil {
		recipientID = s.meta.CounterpartyID
	}
	s.mu.Unlock()

	optimistic := &Message{
		ID:             localID,
		LocalID:        localID,
		ConversationID: s.conversationID,
		SenderID:       s.viewer.UserID,
		RecipientID:    recipientID,
		Type:           TypeText,
		Body:           body,
		Metadata:       map[string]any{MetadataClientMessageID: clientMessageID},
		CreatedAt:      time.Now(),
		Pending:        true,
	}

	s.mu.Lock()
	s.setStateLocked(ctx, Merge(s.items, optimistic))
	s.mu.Unlock()
	metrics.MessagesMerged.WithLabelValues("optimistic").Inc()
	metrics.SendsTotal.Inc()

	committed, err := s.backend.SendMessage(ctx, s.conversationID, &SendRequest{
		Type:        TypeText,
		Body:        body,
		RecipientID: recipientID,
		Metadata:    map[string]any{MetadataClientMessageID: clientMessageID},
	})
	if err != nil {
		s.markFailed(ctx, localID, err)
		metrics.SendFailures.Inc()
		return nil, err
	}

	s.mu.Lock()
	s.lastSendErr = ""
	s.setStateLocked(ctx, Merge(s.items, committed))
	s.mu.Unlock()
	metrics.MessagesMerged.WithLabelValues("send_response").Inc()

	s.log.Debug().
		Str("message_id", committed.ID).
		Str("client_message_id", clientMessageID).
		Msg("message committed")
	return committed.Clone(), nil
}

// markFailed flips the optimistic entry to a retryable failed entry in place.
// The entry is never removed: a pending message resolves into committed or
// failed, it does not silently disappear.
func (s *Session) markFailed(ctx context.Context, localID string, cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSendErr = cause.Error()
	items := make([]*Message, len(s.items))
	for i, m := range s.items {
		if m.ID == localID {
			failed := m.Clone()
			failed.Pending = false
			failed.Failed = true
			items[i] = failed
		} else {
			items[i] = m
		}
	}
	s.setStateLocked(ctx, items)
	s.log.Warn().Err(cause).Str("local_id", localID).Msg("send failed")
}

// Retry re-submits a failed entry's body: the failed entry is removed and a
// fresh optimistic entry (new ids) takes its place. The latch is claimed
// before the failed entry is touched, so a refused retry leaves it in place.
func (s *Session) Retry(ctx context.Context, messageID string) (*Message, error) {
	if err := s.acquireSendLatch(); err != nil {
		return nil, err
	}
	defer s.releaseSendLatch()

	s.mu.Lock()
	var body string
	found := false
	items := make([]*Message, 0, len(s.items))
	for _, m := range s.items {
		if m.ID == messageID && m.Failed {
			body = m.Body
			found = true
			continue
		}
		items = append(items, m)
	}
	if !found {
		s.mu.Unlock()
		return nil, ErrMessageNotFound
	}
	s.setStateLocked(ctx, items)
	s.mu.Unlock()

	metrics.SendRetries.Inc()
	return s.send(ctx, body)
}

// Snapshot returns the current reconciled sequence.
func (s *Session) Snapshot() []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	out := make([]*Message, len(s.items))
	copy(out, s.items)
	return out
}

// Meta returns the resolved conversation metadata, or nil while unresolved.
func (s *Session) Meta() *ConversationMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Connected reports whether the realtime feed is currently connected.
func (s *Session) Connected() bool { return s.connected.Load() }

// Sending reports whether a send is in flight.
func (s *Session) Sending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// LoadError returns the last history fetch error, empty when healthy.
func (s *Session) LoadError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

// LastSendError returns the last send failure, empty after a clean send.
func (s *Session) LastSendError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSendErr
}

// LastActive returns the time of the last state change or snapshot read.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close tears the session down: the realtime subscription is released and the
// session refuses further operations. Idempotent. The cache entry survives so
// a reopen paints instantly.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		if s.cancelRun != nil {
			s.cancelRun()
		}
		if s.sub != nil {
			_ = s.sub.Close()
		}
		s.wg.Wait()
		s.log.Debug().Msg("session closed")
	})
}

package chat

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/metrics"
)

// ManagerConfig carries the manager's knobs resolved from service config.
type ManagerConfig struct {
	HistoryPageSize  int
	ReadSyncInterval time.Duration
	IdleTTL          time.Duration
	SweepInterval    time.Duration
}

// Manager owns the open sessions, at most one per (viewer, conversation).
// Reopening a pair tears the previous session down before subscribing again;
// subscription handles are never reused.
type Manager struct {
	cfg      ManagerConfig
	backend  Backend
	stream   Stream
	cache    Cache
	identity Identity
	resolver *Resolver
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewManager creates a session manager.
func NewManager(
	cfg ManagerConfig,
	backend Backend,
	stream Stream,
	cache Cache,
	identity Identity,
	resolver *Resolver,
	log zerolog.Logger,
) *Manager {
	return &Manager{
		cfg:      cfg,
		backend:  backend,
		stream:   stream,
		cache:    cache,
		identity: identity,
		resolver: resolver,
		log:      log.With().Str("component", "session-manager").Logger(),
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
}

func sessionKey(viewerID, conversationID string) string {
	if viewerID == "" {
		viewerID = "anonymous"
	}
	return viewerID + "::" + conversationID
}

// Open opens (or reopens) the session for the viewer and conversation. When
// viewerID is empty the identity provider is consulted; an anonymous viewer
// gets a read-only session.
func (m *Manager) Open(ctx context.Context, viewerID, conversationID string) (*Session, error) {
	viewer, err := m.resolveViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	key := sessionKey(viewerIDOf(viewer), conversationID)

	m.mu.Lock()
	prev := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if prev != nil {
		prev.Close()
		metrics.OpenSessions.Dec()
	}

	s := newSession(conversationID, viewer, SessionConfig{
		HistoryPageSize:  m.cfg.HistoryPageSize,
		ReadSyncInterval: m.cfg.ReadSyncInterval,
	}, m.backend, m.stream, m.cache, m.resolver, m.log)

	if err := s.open(ctx); err != nil {
		s.Close()
		return nil, err
	}

	// Concurrent opens for the same pair race to this store; the displaced
	// session is closed so at most one per pair stays live.
	m.mu.Lock()
	displaced := m.sessions[key]
	m.sessions[key] = s
	m.mu.Unlock()
	if displaced != nil {
		displaced.Close()
		metrics.OpenSessions.Dec()
	}
	metrics.OpenSessions.Inc()

	m.log.Info().
		Str("conversation_id", conversationID).
		Str("viewer_id", viewerIDOf(viewer)).
		Msg("session opened")
	return s, nil
}

// Get returns the open session for the pair. The viewer is resolved the same
// way Open resolves it, so an empty viewer id lands on the key the session was
// stored under.
func (m *Manager) Get(ctx context.Context, viewerID, conversationID string) (*Session, error) {
	viewer, err := m.resolveViewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey(viewerIDOf(viewer), conversationID)]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears down the session for the pair.
func (m *Manager) Close(ctx context.Context, viewerID, conversationID string) error {
	viewer, err := m.resolveViewer(ctx, viewerID)
	if err != nil {
		return err
	}
	key := sessionKey(viewerIDOf(viewer), conversationID)

	m.mu.Lock()
	s, ok := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	metrics.OpenSessions.Dec()
	return nil
}

func (m *Manager) resolveViewer(ctx context.Context, viewerID string) (*UserSession, error) {
	if viewerID != "" {
		return &UserSession{UserID: viewerID}, nil
	}
	sess, err := m.identity.GetSession(ctx)
	if err != nil {
		m.log.Debug().Err(err).Msg("identity lookup failed, treating as anonymous")
		return nil, nil
	}
	return sess, nil
}

func viewerIDOf(viewer *UserSession) string {
	if viewer == nil {
		return ""
	}
	return viewer.UserID
}

// Start begins the idle-session sweeper in background. Safe to call more than
// once; only the first call starts it.
func (m *Manager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		m.wg.Add(1)
		go m.sweep(ctx)
		m.log.Info().Dur("idle_ttl", m.cfg.IdleTTL).Msg("idle sweeper started")
	})
}

// Stop closes all sessions and shuts the sweeper down. Safe to call more than
// once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.done)
		m.wg.Wait()

		m.mu.Lock()
		sessions := make([]*Session, 0, len(m.sessions))
		for _, s := range m.sessions {
			sessions = append(sessions, s)
		}
		m.sessions = make(map[string]*Session)
		m.mu.Unlock()

		for _, s := range sessions {
			s.Close()
			metrics.OpenSessions.Dec()
		}
		m.log.Info().Msg("session manager stopped")
	})
}

func (m *Manager) sweep(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.done:
			return
		case <-ticker.C:
			m.closeIdle()
		}
	}
}

func (m *Manager) closeIdle() {
	cutoff := time.Now().Add(-m.cfg.IdleTTL)

	m.mu.Lock()
	var stale []*Session
	for key, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, key)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
		metrics.OpenSessions.Dec()
		m.log.Info().
			Str("conversation_id", s.ConversationID()).
			Msg("idle session closed")
	}
}

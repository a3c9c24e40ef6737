package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, backend *fakeBackend, identity Identity) *Manager {
	t.Helper()
	if identity == nil {
		identity = &fakeIdentity{sess: &UserSession{UserID: "viewer-1"}}
	}
	resolver := NewResolver(backend, &fakeDirectory{}, nil, zerolog.Nop())
	return NewManager(ManagerConfig{
		HistoryPageSize:  50,
		ReadSyncInterval: 8 * time.Second,
		IdleTTL:          30 * time.Minute,
		SweepInterval:    time.Minute,
	}, backend, &fakeStream{}, newFakeCache(), identity, resolver, zerolog.Nop())
}

func TestManagerOpenAndGet(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "viewer-1", ResponderID: "u2"},
	}
	m := newTestManager(t, backend, nil)
	defer m.Stop()

	s, err := m.Open(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)

	got, err := m.Get(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get(context.Background(), "viewer-1", "conv-other")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerReopenTearsDownPrevious(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "viewer-1", ResponderID: "u2"},
	}
	m := newTestManager(t, backend, nil)
	defer m.Stop()

	first, err := m.Open(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)
	second, err := m.Open(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)
	require.NotSame(t, first, second)

	// The superseded session refuses further sends; the new one is live.
	_, err = first.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = second.Send(context.Background(), "hello")
	assert.NoError(t, err)
}

func TestManagerConcurrentOpenSamePair(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "viewer-1", ResponderID: "u2"},
	}
	started := make(chan struct{}, 2)
	release := make(chan struct{})
	backend.listHook = func() {
		started <- struct{}{}
		<-release
	}
	m := newTestManager(t, backend, nil)
	defer m.Stop()

	results := make(chan *Session, 2)
	for i := 0; i < 2; i++ {
		go func() {
			s, err := m.Open(context.Background(), "viewer-1", "conv-1")
			assert.NoError(t, err)
			results <- s
		}()
	}

	// Both opens are in their history fetch before either stores.
	<-started
	<-started
	close(release)

	first, second := <-results, <-results
	require.NotSame(t, first, second)

	stored, err := m.Get(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)

	// Exactly one session survives the race; the displaced one is closed.
	var loser *Session
	switch stored {
	case first:
		loser = second
	case second:
		loser = first
	default:
		t.Fatal("stored session is neither open result")
	}
	_, err = loser.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSessionClosed)
	_, err = stored.Send(context.Background(), "hello")
	assert.NoError(t, err)
}

func TestManagerAnonymousViewer(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "u1", ResponderID: "u2"},
	}
	m := newTestManager(t, backend, &fakeIdentity{})
	defer m.Stop()

	s, err := m.Open(context.Background(), "", "conv-1")
	require.NoError(t, err)

	// Anonymous sessions are read-only and keyed under the placeholder.
	_, err = s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrNoViewer)

	got, err := m.Get(context.Background(), "", "conv-1")
	require.NoError(t, err)
	assert.Same(t, s, got)
}

func TestManagerGetResolvesViewerFromIdentity(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "u1", ResponderID: "u2"},
	}
	identity := &fakeIdentity{sess: &UserSession{UserID: "u1", AccessToken: "token"}}
	m := newTestManager(t, backend, identity)
	defer m.Stop()

	// Open with no explicit viewer stores the session under the identity's id;
	// follow-up lookups with an empty viewer must land on the same key.
	s, err := m.Open(context.Background(), "", "conv-1")
	require.NoError(t, err)

	got, err := m.Get(context.Background(), "", "conv-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Close(context.Background(), "", "conv-1"))
	_, err = m.Get(context.Background(), "", "conv-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManagerIdentityFailureDegradesToAnonymous(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "u1", ResponderID: "u2"},
	}
	m := newTestManager(t, backend, &fakeIdentity{err: errors.New("identity down")})
	defer m.Stop()

	s, err := m.Open(context.Background(), "", "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "anonymous", s.viewerID())
}

func TestManagerClose(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "viewer-1", ResponderID: "u2"},
	}
	m := newTestManager(t, backend, nil)
	defer m.Stop()

	_, err := m.Open(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)

	require.NoError(t, m.Close(context.Background(), "viewer-1", "conv-1"))
	_, err = m.Get(context.Background(), "viewer-1", "conv-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, m.Close(context.Background(), "viewer-1", "conv-1"), ErrSessionNotFound)
}

func TestManagerCloseIdle(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "viewer-1", ResponderID: "u2"},
	}
	m := newTestManager(t, backend, nil)
	defer m.Stop()

	s, err := m.Open(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)

	// Fresh sessions survive a sweep.
	m.closeIdle()
	_, err = m.Get(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)

	// Backdate the session past the idle TTL and sweep again.
	s.mu.Lock()
	s.lastActive = time.Now().Add(-time.Hour)
	s.mu.Unlock()

	m.closeIdle()
	_, err = m.Get(context.Background(), "viewer-1", "conv-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestManagerStopClosesAll(t *testing.T) {
	backend := &fakeBackend{
		conv: &Conversation{ID: "conv-1", InitiatorID: "viewer-1", ResponderID: "u2"},
	}
	m := newTestManager(t, backend, nil)
	m.Start(context.Background())

	s, err := m.Open(context.Background(), "viewer-1", "conv-1")
	require.NoError(t, err)

	m.Stop()
	m.Stop()

	_, err = s.Send(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrSessionClosed)
}

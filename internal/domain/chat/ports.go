package chat

import "context"

// Backend is the REST contract this engine consumes. Implementations live in
// infrastructure; the engine never talks HTTP directly.
type Backend interface {
	// ListMessages returns one page of history, newest-first.
	ListMessages(ctx context.Context, conversationID string, opts ListOptions) (*MessagePage, error)

	// SendMessage commits a message and returns the server-assigned record.
	SendMessage(ctx context.Context, conversationID string, req *SendRequest) (*Message, error)

	// MarkRead acknowledges the conversation as read by the caller.
	MarkRead(ctx context.Context, conversationID string) error

	// GetConversation fetches the conversation record.
	GetConversation(ctx context.Context, conversationID string) (*Conversation, error)
}

// Identity yields the current caller's session. A nil session with nil error
// means anonymous.
type Identity interface {
	GetSession(ctx context.Context) (*UserSession, error)
}

// Directory resolves display profiles for counterparties. A nil profile with
// nil error means the user is not in the directory; the resolver falls through
// to the next tier.
type Directory interface {
	ResolveProfile(ctx context.Context, userID string) (*Profile, error)
}

// StreamEvent is one frame from the realtime feed. Exactly one of Message or
// Status is meaningful per frame.
type StreamEvent struct {
	// Message is set for insert events.
	Message *Message
	// Status marks a connection status delta when StatusChanged is true.
	StatusChanged bool
	Connected     bool
}

// Subscription is one live realtime feed for a single conversation. Events is
// closed when the subscription ends; Close is idempotent.
type Subscription interface {
	Events() <-chan StreamEvent
	Close() error
}

// Stream owns subscription establishment. Implementations must hand out a
// fresh channel per call; handles are never reused across conversations.
type Stream interface {
	Subscribe(ctx context.Context, conversationID string) (Subscription, error)
}

// Cache is the injected, process-wide snapshot cache keyed by viewer and
// conversation. It mirrors the latest reconciled sequence so a remount paints
// instantly; correctness never depends on it.
type Cache interface {
	// Get returns the cached sequence, or nil when cold or expired.
	Get(ctx context.Context, viewerID, conversationID string) []*Message

	// Set replaces the cached sequence with the latest reconciled state.
	Set(ctx context.Context, viewerID, conversationID string, items []*Message)
}

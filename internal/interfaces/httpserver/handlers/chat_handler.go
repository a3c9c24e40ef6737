package handlers

import (
	"context"

	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

// ChatHandler bridges HTTP routes to the session manager.
type ChatHandler struct {
	manager *chat.Manager
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(manager *chat.Manager) *ChatHandler {
	return &ChatHandler{manager: manager}
}

// Open opens (or reopens) the session for the viewer and conversation.
func (h *ChatHandler) Open(ctx context.Context, viewerID, conversationID string) (*chat.Session, error) {
	return h.manager.Open(ctx, viewerID, conversationID)
}

// Get returns the open session for the pair.
func (h *ChatHandler) Get(ctx context.Context, viewerID, conversationID string) (*chat.Session, error) {
	return h.manager.Get(ctx, viewerID, conversationID)
}

// Send sends a message through the session's send controller.
func (h *ChatHandler) Send(ctx context.Context, viewerID, conversationID, body string) (*chat.Message, error) {
	s, err := h.manager.Get(ctx, viewerID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.Send(ctx, body)
}

// Retry re-submits a failed message.
func (h *ChatHandler) Retry(ctx context.Context, viewerID, conversationID, messageID string) (*chat.Message, error) {
	s, err := h.manager.Get(ctx, viewerID, conversationID)
	if err != nil {
		return nil, err
	}
	return s.Retry(ctx, messageID)
}

// Close tears the session down.
func (h *ChatHandler) Close(ctx context.Context, viewerID, conversationID string) error {
	return h.manager.Close(ctx, viewerID, conversationID)
}

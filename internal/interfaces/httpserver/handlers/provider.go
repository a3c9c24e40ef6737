package handlers

import "github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"

// Provider holds all HTTP handlers.
type Provider struct {
	Chat *ChatHandler
}

// NewProvider creates a new handler provider.
func NewProvider(manager *chat.Manager) *Provider {
	return &Provider{
		Chat: NewChatHandler(manager),
	}
}

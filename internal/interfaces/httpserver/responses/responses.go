// Package responses contains HTTP response DTOs and error mapping for the
// chat-sync service.
package responses

import (
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error *ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ConversationResponse is the snapshot of an open conversation session.
type ConversationResponse struct {
	ConversationID string                 `json:"conversation_id"`
	Messages       []*chat.Message        `json:"messages"`
	Metadata       *chat.ConversationMeta `json:"metadata,omitempty"`
	Connected      bool                   `json:"connected"`
}

// MessageListResponse wraps the reconciled message sequence.
type MessageListResponse struct {
	Object string          `json:"object"` // "list"
	Data   []*chat.Message `json:"data"`
}

// MessageResponse wraps one committed message.
type MessageResponse struct {
	Message *chat.Message `json:"message"`
}

// StatusResponse reports session health for the UI.
type StatusResponse struct {
	ConversationID string                 `json:"conversation_id"`
	Connected      bool                   `json:"connected"`
	Sending        bool                   `json:"sending"`
	LoadError      string                 `json:"load_error,omitempty"`
	LastSendError  string                 `json:"last_send_error,omitempty"`
	Metadata       *chat.ConversationMeta `json:"metadata,omitempty"`
}

// ClosedResponse acknowledges a session teardown.
type ClosedResponse struct {
	ConversationID string `json:"conversation_id"`
	Closed         bool   `json:"closed"`
}

// NewConversationResponse builds the open-session snapshot.
func NewConversationResponse(s *chat.Session) *ConversationResponse {
	return &ConversationResponse{
		ConversationID: s.ConversationID(),
		Messages:       s.Snapshot(),
		Metadata:       s.Meta(),
		Connected:      s.Connected(),
	}
}

// NewStatusResponse builds the session status view.
func NewStatusResponse(s *chat.Session) *StatusResponse {
	return &StatusResponse{
		ConversationID: s.ConversationID(),
		Connected:      s.Connected(),
		Sending:        s.Sending(),
		LoadError:      s.LoadError(),
		LastSendError:  s.LastSendError(),
		Metadata:       s.Meta(),
	}
}

package chat

import "time"

// MessageType classifies the payload of a message.
type MessageType string

const (
	// TypeText is a plain text message.
	TypeText MessageType = "text"
	// TypeFile is a message carrying a file attachment.
	TypeFile MessageType = "file"
	// TypeSystem is a backend-generated notice.
	TypeSystem MessageType = "system"
)

// MetadataClientMessageID is the metadata key carrying the client-generated
// correlation id used to match an optimistic message to its committed counterpart.
const MetadataClientMessageID = "client_message_id"

// Message is the atomic unit exchanged in a conversation.
//
// Pending, Failed and LocalID are local-only delivery annotations; the backend
// never stores them and they are stripped before any outbound call.
type Message struct {
	ID             string         `json:"id"`
	ConversationID string         `json:"conversation_id"`
	SenderID       string         `json:"sender_id"`
	RecipientID    string         `json:"recipient_id,omitempty"`
	Type           MessageType    `json:"message_type"`
	Body           string         `json:"body,omitempty"`
	FileURL        string         `json:"file_url,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	Pending bool   `json:"pending,omitempty"`
	Failed  bool   `json:"failed,omitempty"`
	LocalID string `json:"local_id,omitempty"`
}

// ClientMessageID returns the correlation id from metadata, or "" when the
// backend (or sender) did not carry one.
func (m *Message) ClientMessageID() string {
	if m == nil || m.Metadata == nil {
		return ""
	}
	if v, ok := m.Metadata[MetadataClientMessageID].(string); ok {
		return v
	}
	return ""
}

// Clone returns a deep copy of the message. Callers hand clones to the merge
// engine so shared snapshots are never mutated in place.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	out := *m
	if m.Metadata != nil {
		out.Metadata = make(map[string]any, len(m.Metadata))
		for k, v := range m.Metadata {
			out.Metadata[k] = v
		}
	}
	if m.ReadAt != nil {
		t := *m.ReadAt
		out.ReadAt = &t
	}
	return &out
}

// Committed reports whether the message is a server-confirmed record rather
// than an unresolved local entry.
func (m *Message) Committed() bool {
	return !m.Pending && !m.Failed
}

// Role identifies the viewer's side of a two-party conversation.
type Role string

const (
	// RoleInitiator is the participant that opened the conversation.
	RoleInitiator Role = "initiator"
	// RoleResponder is the other party.
	RoleResponder Role = "responder"
)

// Conversation is the backend's conversation record.
type Conversation struct {
	ID            string `json:"id"`
	InitiatorID   string `json:"initiator_id"`
	ResponderID   string `json:"responder_id"`
	Subject       string `json:"subject,omitempty"`
	// Fallback profile fields embedded in the conversation record itself,
	// used when the directory lookup yields nothing.
	FallbackName      string `json:"fallback_name,omitempty"`
	FallbackRoleLabel string `json:"fallback_role_label,omitempty"`
	FallbackAvatarURL string `json:"fallback_avatar_url,omitempty"`
}

// Profile is a resolved display profile for a counterparty.
type Profile struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	RoleLabel string `json:"role_label,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ConversationMeta describes the resolved context of an open conversation: who the
// counterparty is, which side the viewer sits on, and the display profile after
// the fallback chain has run.
type ConversationMeta struct {
	ConversationID string   `json:"conversation_id"`
	CounterpartyID string   `json:"counterparty_id"`
	ViewerRole     Role     `json:"viewer_role"`
	Counterparty   *Profile `json:"counterparty,omitempty"`
}

// UserSession is the identity provider's view of the current caller.
type UserSession struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// MessagePage is one page of conversation history. Items arrive newest-first
// from the backend; the fetch reconciler re-sorts ascending.
type MessagePage struct {
	Items      []*Message `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ListOptions controls history pagination.
type ListOptions struct {
	Limit  int
	Cursor string
}

// SendRequest is the outbound payload for a send operation.
type SendRequest struct {
	Type        MessageType    `json:"message_type"`
	Body        string         `json:"body"`
	RecipientID string         `json:"recipient_id,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

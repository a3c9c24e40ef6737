package chat

import "errors"

var (
	// ErrEmptyBody is returned when a send is attempted with a blank body.
	ErrEmptyBody = errors.New("chat: message body is empty")
	// ErrSendInFlight is returned when a send is attempted while another send
	// for the same conversation has not resolved yet.
	ErrSendInFlight = errors.New("chat: send already in flight")
	// ErrNoViewer is returned when an operation requires a resolved viewer id.
	ErrNoViewer = errors.New("chat: no authenticated viewer")
	// ErrSessionClosed is returned when operating on a torn-down session.
	ErrSessionClosed = errors.New("chat: session closed")
	// ErrSessionNotFound is returned when no session is open for the conversation.
	ErrSessionNotFound = errors.New("chat: session not found")
	// ErrMessageNotFound is returned when a retry references an unknown or
	// non-failed entry.
	ErrMessageNotFound = errors.New("chat: failed message not found")
	// ErrConversationNotFound is returned when the conversation id resolves to
	// nothing on the backend.
	ErrConversationNotFound = errors.New("chat: conversation not found")
)

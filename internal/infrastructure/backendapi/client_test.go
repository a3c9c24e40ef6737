package backendapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

type staticIdentity struct {
	sess *chat.UserSession
}

func (s staticIdentity) GetSession(context.Context) (*chat.UserSession, error) {
	return s.sess, nil
}

func newTestClient(t *testing.T, handler http.Handler, sess *chat.UserSession) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		BackendBaseURL: srv.URL,
		BackendTimeout: 5 * time.Second,
	}
	return NewClient(cfg, staticIdentity{sess: sess}, zerolog.Nop())
}

func TestClientListMessages(t *testing.T) {
	var gotPath, gotAuth, gotLimit string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chat.MessagePage{
			Items: []*chat.Message{{ID: "srv-1", ConversationID: "conv-1", Body: "hi"}},
		})
	})
	c := newTestClient(t, handler, &chat.UserSession{UserID: "u1", AccessToken: "tok-1"})

	page, err := c.ListMessages(context.Background(), "conv-1", chat.ListOptions{Limit: 25})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "srv-1", page.Items[0].ID)
	assert.Equal(t, "/conversations/conv-1/messages", gotPath)
	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "25", gotLimit)
}

func TestClientAnonymousOmitsAuth(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chat.MessagePage{})
	})
	c := newTestClient(t, handler, nil)

	_, err := c.ListMessages(context.Background(), "conv-1", chat.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClientSendMessage(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)

		var req chat.SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Body)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chat.Message{
			ID:             "srv-1",
			ConversationID: "conv-1",
			Body:           req.Body,
			Metadata:       req.Metadata,
		})
	})
	c := newTestClient(t, handler, &chat.UserSession{UserID: "u1", AccessToken: "tok-1"})

	msg, err := c.SendMessage(context.Background(), "conv-1", &chat.SendRequest{
		Type:     chat.TypeText,
		Body:     "hello",
		Metadata: map[string]any{chat.MetadataClientMessageID: "c-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-1", msg.ID)
	assert.Equal(t, "c-1", msg.ClientMessageID())
}

func TestClientSendMessageServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	c := newTestClient(t, handler, nil)

	_, err := c.SendMessage(context.Background(), "conv-1", &chat.SendRequest{Body: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientMarkRead(t *testing.T) {
	var gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})
	c := newTestClient(t, handler, nil)

	require.NoError(t, c.MarkRead(context.Background(), "conv-1"))
	assert.Equal(t, "/conversations/conv-1/read", gotPath)
}

func TestClientGetConversationNotFound(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	c := newTestClient(t, handler, nil)

	_, err := c.GetConversation(context.Background(), "conv-missing")
	assert.ErrorIs(t, err, chat.ErrConversationNotFound)
}

func TestClientGetConversation(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chat.Conversation{
			ID:          "conv-1",
			InitiatorID: "u1",
			ResponderID: "u2",
		})
	})
	c := newTestClient(t, handler, nil)

	conv, err := c.GetConversation(context.Background(), "conv-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", conv.InitiatorID)
}

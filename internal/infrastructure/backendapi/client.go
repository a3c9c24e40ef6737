// Package backendapi implements the chat backend REST contract over HTTP.
package backendapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

// Client talks to the conversation backend. It implements chat.Backend.
type Client struct {
	http     *resty.Client
	identity chat.Identity
	log      zerolog.Logger
}

// NewClient creates a backend client from service config.
func NewClient(cfg *config.Config, identity chat.Identity, log zerolog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BackendBaseURL).
		SetTimeout(cfg.BackendTimeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:     httpClient,
		identity: identity,
		log:      log.With().Str("component", "backend-client").Logger(),
	}
}

var _ chat.Backend = (*Client)(nil)

// request builds a request with the caller's bearer token when a session is
// available. An anonymous caller still gets read access; the backend decides.
func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if sess, err := c.identity.GetSession(ctx); err == nil && sess != nil && sess.AccessToken != "" {
		req.SetAuthToken(sess.AccessToken)
	}
	return req
}

// ListMessages fetches one page of history. The backend returns newest-first;
// ordering is the fetch reconciler's concern.
func (c *Client) ListMessages(ctx context.Context, conversationID string, opts chat.ListOptions) (*chat.MessagePage, error) {
	var page chat.MessagePage
	req := c.request(ctx).SetResult(&page)
	if opts.Limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		req.SetQueryParam("cursor", opts.Cursor)
	}

	resp, err := req.Get(fmt.Sprintf("/conversations/%s/messages", conversationID))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("list messages", resp)
	}
	return &page, nil
}

// SendMessage commits a message and returns the server-assigned record.
func (c *Client) SendMessage(ctx context.Context, conversationID string, sendReq *chat.SendRequest) (*chat.Message, error) {
	var msg chat.Message
	resp, err := c.request(ctx).
		SetBody(sendReq).
		SetResult(&msg).
		Post(fmt.Sprintf("/conversations/%s/messages", conversationID))
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if resp.IsError() {
		return nil, statusError("send message", resp)
	}
	return &msg, nil
}

// MarkRead acknowledges the conversation as read.
func (c *Client) MarkRead(ctx context.Context, conversationID string) error {
	resp, err := c.request(ctx).
		Post(fmt.Sprintf("/conversations/%s/read", conversationID))
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if resp.IsError() {
		return statusError("mark read", resp)
	}
	return nil
}

// GetConversation fetches the conversation record.
func (c *Client) GetConversation(ctx context.Context, conversationID string) (*chat.Conversation, error) {
	var conv chat.Conversation
	resp, err := c.request(ctx).
		SetResult(&conv).
		Get(fmt.Sprintf("/conversations/%s", conversationID))
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, chat.ErrConversationNotFound
	}
	if resp.IsError() {
		return nil, statusError("get conversation", resp)
	}
	return &conv, nil
}

func statusError(op string, resp *resty.Response) error {
	return fmt.Errorf("%s: backend returned %d", op, resp.StatusCode())
}

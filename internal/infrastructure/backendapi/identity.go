package backendapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

// identityCacheTTL bounds how long a resolved session is reused before the
// provider is consulted again.
const identityCacheTTL = time.Minute

// IdentityClient resolves the current caller's session from the identity
// provider. It implements chat.Identity. Results are cached briefly so the
// per-request token injection does not hammer the provider.
type IdentityClient struct {
	http *resty.Client
	log  zerolog.Logger

	mu        sync.Mutex
	cached    *chat.UserSession
	fetchedAt time.Time
}

// NewIdentityClient creates an identity client from service config.
func NewIdentityClient(cfg *config.Config, log zerolog.Logger) *IdentityClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BackendBaseURL).
		SetTimeout(cfg.BackendTimeout)

	return &IdentityClient{
		http: httpClient,
		log:  log.With().Str("component", "identity-client").Logger(),
	}
}

var _ chat.Identity = (*IdentityClient)(nil)

// GetSession returns the current session, or nil when anonymous.
func (c *IdentityClient) GetSession(ctx context.Context) (*chat.UserSession, error) {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.fetchedAt) < identityCacheTTL {
		sess := *c.cached
		c.mu.Unlock()
		return &sess, nil
	}
	c.mu.Unlock()

	var sess chat.UserSession
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&sess).
		Get("/auth/session")
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get session: provider returned %d", resp.StatusCode())
	}

	c.mu.Lock()
	c.cached = &sess
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	out := sess
	return &out, nil
}

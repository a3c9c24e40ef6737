package backendapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/config"
	"github.com/Srinath10X/foundersTribe-sub002/internal/domain/chat"
)

// DirectoryClient resolves counterparty display profiles and avatar URLs.
// It implements chat.Directory and chat.AvatarResolver; every miss is a nil
// result, not an error, so the resolver's fallback chain keeps walking.
type DirectoryClient struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewDirectoryClient creates a directory client from service config.
func NewDirectoryClient(cfg *config.Config, log zerolog.Logger) *DirectoryClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BackendBaseURL).
		SetTimeout(cfg.BackendTimeout)

	return &DirectoryClient{
		http: httpClient,
		log:  log.With().Str("component", "directory-client").Logger(),
	}
}

var (
	_ chat.Directory      = (*DirectoryClient)(nil)
	_ chat.AvatarResolver = (*DirectoryClient)(nil)
)

// ResolveProfile fetches the enriched directory profile for a user. A 404
// means the user is not in the directory, which is a miss, not an error.
func (c *DirectoryClient) ResolveProfile(ctx context.Context, userID string) (*chat.Profile, error) {
	var profile chat.Profile
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&profile).
		Get(fmt.Sprintf("/directory/profiles/%s", userID))
	if err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, nil
	}
	if resp.IsError() {
		return nil, fmt.Errorf("resolve profile: directory returned %d", resp.StatusCode())
	}
	return &profile, nil
}

// avatarSignResponse is the storage service's signed-URL answer.
type avatarSignResponse struct {
	URL string `json:"url"`
}

// avatarListResponse is the storage listing answer for the avatar probe.
type avatarListResponse struct {
	Objects []struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	} `json:"objects"`
}

// ResolveAvatarURL locates an avatar by convention: first ask for a signed URL
// for the user's stored avatar path, then list the user's storage folder for
// an avatar.* object. Both misses are silent.
func (c *DirectoryClient) ResolveAvatarURL(ctx context.Context, userID string) (string, error) {
	var signed avatarSignResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&signed).
		Get(fmt.Sprintf("/storage/avatars/%s/signed-url", userID))
	if err == nil && resp.IsSuccess() && signed.URL != "" {
		return signed.URL, nil
	}
	if err != nil {
		c.log.Debug().Err(err).Str("user_id", userID).Msg("signed url probe failed")
	}

	var listing avatarListResponse
	resp, err = c.http.R().
		SetContext(ctx).
		SetResult(&listing).
		SetQueryParam("prefix", "avatar.").
		Get(fmt.Sprintf("/storage/avatars/%s", userID))
	if err != nil {
		return "", fmt.Errorf("avatar listing: %w", err)
	}
	if resp.IsError() {
		return "", nil
	}
	for _, obj := range listing.Objects {
		if obj.URL != "" {
			return obj.URL, nil
		}
	}
	return "", nil
}

package chat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/metrics"
)

// AvatarResolver locates an avatar URL for a user by convention (signed URL
// for a stored path, or a bucket probe for an avatar.* object). An empty URL
// with nil error means nothing was found.
type AvatarResolver interface {
	ResolveAvatarURL(ctx context.Context, userID string) (string, error)
}

// Resolver resolves conversation metadata: the counterparty, the viewer's role,
// and the counterparty's display profile through a graceful fallback chain.
// Every tier failure degrades to the next tier; only an unresolvable
// conversation id is an error.
type Resolver struct {
	backend   Backend
	directory Directory
	avatars   AvatarResolver
	log       zerolog.Logger
}

// NewResolver creates a conversation resolver.
func NewResolver(backend Backend, directory Directory, avatars AvatarResolver, log zerolog.Logger) *Resolver {
	return &Resolver{
		backend:   backend,
		directory: directory,
		avatars:   avatars,
		log:       log.With().Str("component", "conversation-resolver").Logger(),
	}
}

// Resolve fetches the conversation record and resolves the counterparty's
// profile for the given viewer.
func (r *Resolver) Resolve(ctx context.Context, conversationID, viewerID string) (*ConversationMeta, error) {
	conv, err := r.backend.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}

	role := RoleResponder
	counterpartyID := conv.InitiatorID
	if viewerID == conv.InitiatorID {
		role = RoleInitiator
		counterpartyID = conv.ResponderID
	}

	meta := &ConversationMeta{
		ConversationID: conv.ID,
		CounterpartyID: counterpartyID,
		ViewerRole:     role,
		Counterparty:   r.resolveProfile(ctx, conv, counterpartyID),
	}
	return meta, nil
}

// resolveProfile walks the fallback chain: directory profile, then the avatar
// probe, then conversation-embedded fields, then a generic placeholder.
func (r *Resolver) resolveProfile(ctx context.Context, conv *Conversation, counterpartyID string) *Profile {
	profile, err := r.directory.ResolveProfile(ctx, counterpartyID)
	if err != nil {
		r.log.Debug().Err(err).Str("user_id", counterpartyID).Msg("directory lookup failed")
		profile = nil
	}
	fromDirectory := profile != nil
	if profile == nil {
		profile = &Profile{UserID: counterpartyID}
	}

	if profile.AvatarURL == "" && r.avatars != nil {
		url, err := r.avatars.ResolveAvatarURL(ctx, counterpartyID)
		if err != nil {
			r.log.Debug().Err(err).Str("user_id", counterpartyID).Msg("avatar probe failed")
		} else if url != "" {
			profile.AvatarURL = url
		}
	}

	tier := "directory"
	if !fromDirectory {
		tier = "conversation"
		profile.Name = conv.FallbackName
		profile.RoleLabel = conv.FallbackRoleLabel
	}
	// Conversation-embedded avatar is the last resort after the probe.
	if profile.AvatarURL == "" {
		profile.AvatarURL = conv.FallbackAvatarURL
	}

	if profile.Name == "" {
		tier = "placeholder"
		profile.Name = "Member"
	}

	metrics.ResolverFallbacks.WithLabelValues(tier).Inc()
	return profile
}

package chat

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Srinath10X/foundersTribe-sub002/internal/infrastructure/metrics"
)

// readSyncGate rate-limits mark-read calls for one conversation. Mark-read is a
// best-effort signal: calls inside the window are dropped, failures swallowed.
type readSyncGate struct {
	limiter *rate.Limiter
	backend Backend
	log     zerolog.Logger
}

func newReadSyncGate(backend Backend, interval rate.Limit, log zerolog.Logger) *readSyncGate {
	return &readSyncGate{
		limiter: rate.NewLimiter(interval, 1),
		backend: backend,
		log:     log.With().Str("component", "read-sync").Logger(),
	}
}

// sync fires mark-read at most once per window. Never blocks on the window and
// never surfaces errors.
func (g *readSyncGate) sync(ctx context.Context, conversationID string) {
	if !g.limiter.Allow() {
		metrics.ReadSyncsThrottled.Inc()
		return
	}

	if err := g.backend.MarkRead(ctx, conversationID); err != nil {
		g.log.Debug().Err(err).Str("conversation_id", conversationID).Msg("mark read failed")
		return
	}
	metrics.ReadSyncsSent.Inc()
}

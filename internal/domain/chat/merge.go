package chat

import (
	"sort"
	"time"
)

// Reconciliation windows. The correlation id is the primary dedup mechanism;
// these windows back the heuristics for delivery paths that do not echo the
// client id, and for the same committed record arriving on two channels
// (send response and realtime fan-out). Known false-positive risk: two
// genuinely distinct messages with identical body from the same sender inside
// the window collapse into one.
const (
	// pendingMatchWindow bounds the optimistic-to-committed body match when the
	// backend did not echo a client_message_id.
	pendingMatchWindow = 2 * time.Minute
	// duplicateWindow bounds the committed-duplicate match across channels.
	duplicateWindow = 8 * time.Second
)

// Merge folds one incoming message (optimistic, fetched, or streamed) into an
// existing sequence and returns a new deduplicated sequence sorted ascending by
// created_at, ties kept in insertion order. Pure: neither input is mutated.
func Merge(existing []*Message, incoming *Message) []*Message {
	if incoming == nil {
		return append([]*Message(nil), existing...)
	}

	stored := incoming.Clone()
	// A message surviving merge is never in a failed state; a resolved local
	// send either supersedes its placeholder or arrives committed. The pending
	// flag is preserved so optimistic inserts render as pending.
	stored.Failed = false

	clientID := stored.ClientMessageID()

	kept := make([]*Message, 0, len(existing)+1)
	replaced := false
	for _, m := range existing {
		if m == nil {
			continue
		}
		if m.ID == stored.ID {
			// Overwrite in place to keep the original insertion slot.
			if !replaced {
				kept = append(kept, stored)
				replaced = true
			}
			continue
		}
		if supersededBy(m, stored, clientID) {
			continue
		}
		kept = append(kept, m)
	}
	if !replaced {
		kept = append(kept, stored)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].CreatedAt.Before(kept[j].CreatedAt)
	})
	return kept
}

// supersededBy reports whether existing entry m is made obsolete by incoming.
// Checks run in strict priority order: exact correlation-id match, then the
// windowed pending-body heuristic, then the cross-channel committed duplicate.
func supersededBy(m, incoming *Message, clientID string) bool {
	if m.SenderID != incoming.SenderID {
		return false
	}

	// The optimistic placeholder(s) for this correlation id are superseded by
	// whichever record carries the same id.
	if clientID != "" && m.ClientMessageID() == clientID {
		return true
	}

	if incoming.Pending {
		return false
	}

	// No client id on the incoming record: match a still-pending local entry
	// with the same body inside the pending window.
	if clientID == "" && m.Pending && !m.Failed && m.Body == incoming.Body &&
		withinWindow(m.CreatedAt, incoming.CreatedAt, pendingMatchWindow) {
		return true
	}

	// Same committed message delivered twice via independent channels.
	if m.Committed() && m.Body == incoming.Body &&
		withinWindow(m.CreatedAt, incoming.CreatedAt, duplicateWindow) {
		return true
	}

	return false
}

func withinWindow(a, b time.Time, window time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= window
}

// MergeFetched reconciles a freshly fetched history page against the current
// sequence. The fetched page is authoritative for committed messages; only the
// pending/failed subset of the existing sequence survives a reload.
func MergeFetched(existing []*Message, fetched []*Message) []*Message {
	base := make([]*Message, 0, len(existing))
	for _, m := range existing {
		if m != nil && (m.Pending || m.Failed) {
			base = append(base, m)
		}
	}

	page := make([]*Message, 0, len(fetched))
	for _, m := range fetched {
		if m != nil {
			page = append(page, m)
		}
	}
	sort.SliceStable(page, func(i, j int) bool {
		return page[i].CreatedAt.Before(page[j].CreatedAt)
	})

	for _, m := range page {
		base = Merge(base, m)
	}
	return base
}

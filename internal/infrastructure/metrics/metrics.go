// Package metrics provides Prometheus metrics for the chat-sync service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OpenSessions tracks the number of currently open conversation sessions.
	OpenSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_open_sessions",
			Help: "Number of currently open conversation sessions",
		},
	)

	// MessagesMerged tracks messages folded through the merge engine by source.
	MessagesMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_merged_total",
			Help: "Total messages folded through the merge engine",
		},
		[]string{"source"},
	)

	// DuplicatesCollapsed tracks entries removed by merge deduplication.
	DuplicatesCollapsed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_duplicates_collapsed_total",
			Help: "Total superseded or duplicate entries removed during merge",
		},
	)

	// SendsTotal tracks send attempts.
	SendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sends_total",
			Help: "Total send attempts",
		},
	)

	// SendFailures tracks sends that ended in a failed local entry.
	SendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_send_failures_total",
			Help: "Total sends that failed and were marked retryable",
		},
	)

	// SendRetries tracks retries of failed entries.
	SendRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_send_retries_total",
			Help: "Total retries of failed messages",
		},
	)

	// RealtimeConnected tracks sessions with a live realtime feed.
	RealtimeConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_realtime_connected",
			Help: "Number of sessions with a connected realtime feed",
		},
	)

	// ReadSyncsSent tracks mark-read calls that went out.
	ReadSyncsSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_read_syncs_sent_total",
			Help: "Total mark-read calls sent to the backend",
		},
	)

	// ReadSyncsThrottled tracks mark-read calls dropped by the throttle window.
	ReadSyncsThrottled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_read_syncs_throttled_total",
			Help: "Total mark-read calls dropped by the throttle window",
		},
	)

	// HistoryFetchDuration tracks history page fetch time.
	HistoryFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_history_fetch_duration_seconds",
			Help:    "Duration of conversation history fetches",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ResolverFallbacks tracks which tier served the counterparty profile.
	ResolverFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_resolver_profile_tier_total",
			Help: "Counterparty profile resolutions by fallback tier",
		},
		[]string{"tier"},
	)

	// HTTPRequestDuration tracks request latency on the HTTP surface.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chat_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

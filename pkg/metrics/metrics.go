package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AlertsCreated counts persisted alert records by content type (alert|template|draft).
	AlertsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertbanner_alerts_created_total",
			Help: "Total number of alert records created",
		},
		[]string{"content_type"},
	)

	// ValidationFailures counts create/draft submissions rejected by validation.
	ValidationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertbanner_validation_failures_total",
			Help: "Total number of submissions rejected by content validation",
		},
		[]string{"operation"},
	)

	// NotificationsSent counts dispatched notifications by channel (email|browser) and result.
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alertbanner_notifications_sent_total",
			Help: "Total number of alert notifications dispatched",
		},
		[]string{"channel", "result"},
	)

	// RealtimeSubscribers tracks websocket clients subscribed to alert streams.
	RealtimeSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "alertbanner_realtime_subscribers",
			Help: "Number of connected realtime subscribers",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "alertbanner_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

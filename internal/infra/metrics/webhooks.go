package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		webhookEventsTotal,
		webhookProcessingMs,
	)
}

var (
	webhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Provider webhook deliveries by event type and outcome (processed/failed/duplicate/rejected).",
		},
		[]string{"event_type", "outcome"},
	)

	webhookProcessingMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "webhook_processing_ms",
			Help:    "Webhook processing latency distribution in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600, 3000},
		},
		[]string{"event_type"},
	)
)

func IncWebhookEvent(eventType, outcome string) {
	webhookEventsTotal.WithLabelValues(norm(eventType), norm(outcome)).Inc()
}

func ObserveWebhookLatency(eventType string, ms float64) {
	webhookProcessingMs.WithLabelValues(norm(eventType)).Observe(ms)
}

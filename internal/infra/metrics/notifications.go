package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(notificationsTotal, notificationOutboxDepth)
}

var (
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Outbox dispatch results by kind and outcome (sent/failed).",
		},
		[]string{"kind", "outcome"},
	)

	notificationOutboxDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "notification_outbox_depth",
			Help: "Rows claimed in the last outbox dispatch batch.",
		},
	)
)

func IncNotification(kind, outcome string) {
	notificationsTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

func SetOutboxDepth(n int) { notificationOutboxDepth.Set(float64(n)) }

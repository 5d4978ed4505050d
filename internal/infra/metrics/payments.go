package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		ordersTotal,
		paymentsTotal,
		paymentsRevenueTotal,
		esimsIssuedTotal,
	)
}

var (
	ordersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Orders by status transition target (processing/completed/failed).",
		},
		[]string{"status"},
	)

	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payments by status (processing/succeeded/failed).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_total",
			Help: "The total monetary value of successful payments in minor units, labeled by currency.",
		},
		[]string{"currency"},
	)

	esimsIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "esims_issued_total",
			Help: "Number of eSIM credentials issued.",
		},
	)
)

func IncOrder(status string)   { ordersTotal.WithLabelValues(norm(status)).Inc() }
func IncPayment(status string) { paymentsTotal.WithLabelValues(norm(status)).Inc() }

func AddPaymentRevenue(currency string, amountCents int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(amountCents))
}

func IncEsimIssued() { esimsIssuedTotal.Inc() }

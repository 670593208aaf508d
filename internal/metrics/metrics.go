package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	ProposalsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposals_created_total",
			Help: "Total number of proposals submitted",
		},
	)

	ProposalsAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "proposals_accepted_total",
			Help: "Total number of proposals accepted into contracts",
		},
	)

	PaymentsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_released_total",
			Help: "Total number of escrow settlements released",
		},
	)

	PaymentsReleasedCents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "payments_released_cents_total",
			Help: "Total settled volume in cents, gross of platform fees",
		},
	)

	WithdrawalDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawal_decisions_total",
			Help: "Total withdrawal decisions by outcome",
		},
		[]string{"outcome"}, // outcome: approved, rejected, processed
	)

	DisputesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disputes_resolved_total",
			Help: "Total disputes resolved by resolution",
		},
		[]string{"resolution"}, // resolution: refund, release, none
	)
)

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordPaymentReleased counts a settlement and its gross volume.
func RecordPaymentReleased(amountCents int64) {
	PaymentsReleased.Inc()
	PaymentsReleasedCents.Add(float64(amountCents))
}

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Order creation attempts by outcome",
		},
		[]string{"outcome"},
	)

	webhookNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_notifications_total",
			Help: "Gateway webhook notifications by transaction status and outcome",
		},
		[]string{"transaction_status", "outcome"},
	)

	gatewayRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_request_duration_seconds",
			Help:    "Duration of payment session creation calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	compensationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_compensation_failures_total",
			Help: "Compensation steps that failed after a payment-session error",
		},
		[]string{"step"},
	)

	ticketsReleased = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickets_released_total",
			Help: "Ticket reservations returned to the pool",
		},
	)
)

// TrackOrderCreated records an order creation attempt.
func TrackOrderCreated(outcome string) {
	ordersCreated.WithLabelValues(outcome).Inc()
}

// TrackWebhook records a processed webhook notification.
func TrackWebhook(transactionStatus, outcome string) {
	webhookNotifications.WithLabelValues(transactionStatus, outcome).Inc()
}

// TrackGatewayRequest records the duration of a gateway call.
func TrackGatewayRequest(d time.Duration) {
	gatewayRequestDuration.Observe(d.Seconds())
}

// TrackCompensationFailure records a failed rollback step so operators
// can find orphaned records.
func TrackCompensationFailure(step string) {
	compensationFailures.WithLabelValues(step).Inc()
}

// TrackTicketReleased records a reservation going back to the pool.
func TrackTicketReleased() {
	ticketsReleased.Inc()
}

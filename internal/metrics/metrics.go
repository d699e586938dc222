package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitclub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "status"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitclub",
			Name:      "bookings_total",
			Help:      "Booking operations by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	memberships = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitclub",
			Name:      "memberships_total",
			Help:      "Membership lifecycle operations.",
		},
		[]string{"operation"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitclub",
			Name:      "notifications_total",
			Help:      "Telegram notifications by outcome.",
		},
		[]string{"outcome"},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fitclub",
			Name:      "bot_updates_total",
			Help:      "Telegram bot updates by kind.",
		},
		[]string{"kind"},
	)

	botUpdateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fitclub",
			Name:      "bot_update_duration_seconds",
			Help:      "Time spent processing a bot update.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, memberships, notifications,
			botUpdates, botUpdateDuration)
	})
}

// IncHTTP increments the counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBooking counts a booking operation: operation is create/cancel,
// outcome is ok/rejected/error.
func IncBooking(operation, outcome string) {
	bookings.WithLabelValues(operation, outcome).Inc()
}

// IncMembership counts a membership lifecycle operation.
func IncMembership(operation string) {
	memberships.WithLabelValues(operation).Inc()
}

// IncNotification counts a Telegram notification delivery attempt.
func IncNotification(outcome string) {
	notifications.WithLabelValues(outcome).Inc()
}

// IncBotUpdate counts a processed bot update: kind is command/message/callback.
func IncBotUpdate(kind string) {
	botUpdates.WithLabelValues(kind).Inc()
}

// ObserveBotUpdate records how long a bot update took.
func ObserveBotUpdate(seconds float64) {
	botUpdateDuration.Observe(seconds)
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all delivery-engine metrics
type Metrics struct {
	// Dispatch metrics
	EventsReceived     prometheus.Counter
	BroadcastsReceived prometheus.Counter
	ChannelDeliveries  *prometheus.CounterVec
	ChannelSuppressed  *prometheus.CounterVec
	RefreshThrottled   prometheus.Counter

	// Preference store metrics
	PreferenceSyncs   *prometheus.CounterVec
	PreferenceFetches *prometheus.CounterVec

	// Toast metrics
	ActiveToasts  prometheus.Gauge
	ToastsExpired prometheus.Counter
}

// NewMetrics creates and registers all delivery-engine metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		EventsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "events_received_total",
			Help:      "Total number of push events received",
		}),
		BroadcastsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "broadcasts_received_total",
			Help:      "Total number of broadcast refresh signals received",
		}),
		ChannelDeliveries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "channel_deliveries_total",
			Help:      "Deliveries per channel",
		}, []string{"channel"}),
		ChannelSuppressed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "channel_suppressed_total",
			Help:      "Suppressed deliveries per channel and reason",
		}, []string{"channel", "reason"}),
		RefreshThrottled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "refresh_throttled_total",
			Help:      "Broadcast refreshes dropped by the rate limiter",
		}),
		PreferenceSyncs: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "preference_syncs_total",
			Help:      "Remote preference pushes by status",
		}, []string{"status"}),
		PreferenceFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "preference_fetches_total",
			Help:      "Remote preference fetches by status",
		}, []string{"status"}),
		ActiveToasts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "active_toasts",
			Help:      "Current number of active toast entries",
		}),
		ToastsExpired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "toasts_expired_total",
			Help:      "Toast entries removed by auto-expiry",
		}),
	}
}

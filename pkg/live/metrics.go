package live

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics holds the Prometheus instruments for a live server.
type metrics struct {
	eventsTotal    *prometheus.CounterVec
	eventDuration  prometheus.Histogram
	patchesSent    prometheus.Counter
	activeSessions prometheus.Gauge
	flushErrors    prometheus.Counter
	updateLoops    prometheus.Counter
	effectRuns     prometheus.Counter
}

// newMetrics registers the live server's instruments with reg.
func newMetrics(reg prometheus.Registerer, namespace string) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "events_total",
			Help:      "Client messages processed, by type and status",
		}, []string{"type", "status"}),

		eventDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "event_duration_seconds",
			Help:      "Message processing duration, including the queue flush",
			Buckets:   prometheus.DefBuckets,
		}),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "patches_sent_total",
			Help:      "Patch frames sent to clients",
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "active_sessions",
			Help:      "Connected WebSocket sessions",
		}),

		flushErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "flush_errors_total",
			Help:      "Job errors isolated during queue flushes",
		}),

		updateLoops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "update_loops_total",
			Help:      "Runaway update cascades cut off by the flush guard",
		}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "effect_runs_total",
			Help:      "Watch effect executions across all sessions",
		}),
	}
}

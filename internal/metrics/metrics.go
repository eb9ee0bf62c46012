package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SynthesisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_synthesis_total",
			Help: "Total synthetic data requests by kind",
		},
		[]string{"source", "kind", "status"},
	)

	SynthesisLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "airwatch_synthesis_latency_seconds",
			Help:    "Data source latency in seconds, including artificial delay",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "kind"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	AlertsFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_alerts_fired_total",
			Help: "Total alert events stored by the monitor",
		},
		[]string{"pollutant", "category"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_notifications_total",
			Help: "Total alert notifications by notifier and status",
		},
		[]string{"notifier", "status"},
	)

	AdviceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "airwatch_advice_requests_total",
			Help: "Total advice requests by narrator and outcome",
		},
		[]string{"narrator", "outcome"},
	)

	StaleLookupsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "airwatch_stale_lookups_dropped_total",
			Help: "Lookups discarded because a newer location was selected",
		},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	MutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staffdesk", Name: "mutations_total", Help: "Committed document mutations by collection and operation."},
		[]string{"collection", "op"},
	)
	PersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "staffdesk", Name: "persist_failures_total", Help: "Document persist attempts that failed."},
	)
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staffdesk", Name: "events_published_total", Help: "Change events published to the hub by event type."},
		[]string{"event"},
	)
	EventsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "staffdesk", Name: "subscriber_dropped_events_total", Help: "Events dropped because a subscriber send buffer was full."},
	)
	ConnectedSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "staffdesk", Name: "connected_subscribers", Help: "Currently connected real-time subscribers."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staffdesk", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "staffdesk", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(MutationsTotal)
	reg.MustRegister(PersistFailures)
	reg.MustRegister(EventsPublished)
	reg.MustRegister(EventsDropped)
	reg.MustRegister(ConnectedSubscribers)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

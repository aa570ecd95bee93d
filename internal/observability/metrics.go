package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "realtor_crm"

// Mutation outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

var (
	mutationCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "coordinator",
		Name:      "mutations_total",
		Help:      "Lead mutations by operation and outcome.",
	}, []string{"op", "outcome"})

	rollbackCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "coordinator",
		Name:      "rollbacks_total",
		Help:      "Optimistic stage changes reverted after the store refused them.",
	})

	activityFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "coordinator",
		Name:      "activity_append_failures_total",
		Help:      "Audit activities that could not be stored.",
	})

	sessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Workspaces currently held in memory.",
	})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route and status.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(mutationCounter, rollbackCounter, activityFailures, sessionsGauge, requestDuration)
}

func RecordMutation(op, outcome string) {
	mutationCounter.WithLabelValues(op, outcome).Inc()
}

func RecordRollback() {
	rollbackCounter.Inc()
}

func RecordActivityFailure() {
	activityFailures.Inc()
}

// SetActiveSessions reports the size of the workspace registry.
func SetActiveSessions(n int) {
	sessionsGauge.Set(float64(n))
}

func ObserveRequest(method, route, status string, d time.Duration) {
	requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

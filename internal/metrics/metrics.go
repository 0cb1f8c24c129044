package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QueryDuration is the latency of a whole GetContent call.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentq_query_duration_seconds",
			Help:    "Content query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	// PlanDuration is the latency of a single plan by dialect.
	PlanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentq_plan_duration_seconds",
			Help:    "Query plan execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"dialect"},
	)
	// PlansTotal counts executed query plans by dialect.
	PlansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentq_plans_total",
			Help: "Total number of executed query plans",
		},
		[]string{"dialect", "status"},
	)
	// RemoteRequestsTotal counts calls made to the remote content backend.
	RemoteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentq_remote_requests_total",
			Help: "Total number of remote backend requests",
		},
		[]string{"method", "status"},
	)
	// WritesTotal counts write path operations (insert, update, delete, publish).
	WritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentq_writes_total",
			Help: "Total number of record writes",
		},
		[]string{"operation", "mode", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func ObservePlan(dialect string, start time.Time, err error) {
	PlanDuration.WithLabelValues(dialect).Observe(time.Since(start).Seconds())
	PlansTotal.WithLabelValues(dialect, status(err)).Inc()
}

func ObserveQuery(start time.Time, err error) {
	QueryDuration.WithLabelValues(status(err)).Observe(time.Since(start).Seconds())
}

func ObserveRemote(method string, statusCode int) {
	RemoteRequestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

func ObserveWrite(op, mode string, err error) {
	WritesTotal.WithLabelValues(op, mode, status(err)).Inc()
}

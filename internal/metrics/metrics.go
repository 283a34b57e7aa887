package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	statementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_statements_total",
			Help: "Catalog statements executed, by statement and outcome",
		},
		[]string{"statement", "status"},
	)
	statementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookstore_statement_duration_seconds",
			Help:    "Time spent executing a catalog statement",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"statement"},
	)
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_http_requests_total",
			Help: "HTTP requests served, by route template and status code",
		},
		[]string{"route", "code"},
	)
	auditLogsExported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookstore_audit_logs_exported_total",
			Help: "Audit log entries exported by the background exporter",
		},
	)
)

func ObserveStatement(name string, took time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	statementsTotal.WithLabelValues(name, status).Inc()
	statementDuration.WithLabelValues(name).Observe(took.Seconds())
}

func ObserveRequest(route string, code int) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

func AddExported(n int) {
	auditLogsExported.Add(float64(n))
}
